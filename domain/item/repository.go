package item

// Repository is the item registry. Each id holds at most one item; Create
// requires the slot to be absent, Replace/ApplyPatch/Delete require it to be
// present and report ErrNotFound otherwise.
type Repository interface {
	List() map[string]Item
	Get(id string) (Item, bool)
	Create(id string, it Item) error
	Replace(id string, it Item) error
	ApplyPatch(id string, p Patch) error
	Delete(id string) error
}
