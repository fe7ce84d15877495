package item

// Item is a catalog entry. The id is not part of the record itself: it is the
// key under which the item lives in the registry and never changes after create.
type Item struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Tags        []string `json:"tags"`
}

// Patch carries a partial update. A nil field means "leave the stored value
// untouched"; a non-nil field overwrites it, including zero values like an
// empty tag list or a price of 0.
type Patch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Tags        *[]string `json:"tags"`
}

// ApplyPatch returns a copy of the item with every field present in the patch
// overwritten. The receiver is untouched, so the caller can build the merged
// record in full before storing it.
func (i Item) ApplyPatch(p Patch) Item {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Price != nil {
		i.Price = *p.Price
	}
	if p.Tags != nil {
		i.Tags = append([]string(nil), (*p.Tags)...)
	}
	return i
}
