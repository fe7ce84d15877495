package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	item "github.com/meizuflux/items-api/domain/item"
	"github.com/meizuflux/items-api/infra/repositories"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(repositories.NewItemRepositoryMemory())
}

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sodaBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Soda",
		"description": "A tasty, sugary drink.",
		"price":       0.99,
		"tags":        []string{"drink", "tasty"},
	}
}

func TestSodaLifecycle(t *testing.T) {
	r := newTestRouter()

	w := performJSON(r, http.MethodPost, "/items/soda", sodaBody())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, strings.HasSuffix(w.Header().Get("Location"), "/items/soda"),
		"Location was %q", w.Header().Get("Location"))
	assert.JSONEq(t, `{"name":"Soda","description":"A tasty, sugary drink.","price":0.99,"tags":["drink","tasty"]}`, w.Body.String())

	w = performJSON(r, http.MethodGet, "/items/soda", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Soda","description":"A tasty, sugary drink.","price":0.99,"tags":["drink","tasty"]}`, w.Body.String())

	w = performJSON(r, http.MethodPost, "/items/soda", sodaBody())
	require.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"Item with id 'soda' already exists."}`, w.Body.String())

	w = performJSON(r, http.MethodDelete, "/items/soda", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = performJSON(r, http.MethodGet, "/items/soda", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())

	w = performJSON(r, http.MethodDelete, "/items/soda", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"No item with id 'soda' found to delete."}`, w.Body.String())
}

func TestListContainsCreatedItems(t *testing.T) {
	r := newTestRouter()

	w := performJSON(r, http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	a := map[string]interface{}{"name": "A", "description": "a", "price": 1, "tags": []string{}}
	b := map[string]interface{}{"name": "B", "description": "b", "price": 2, "tags": []string{"x"}}
	require.Equal(t, http.StatusCreated, performJSON(r, http.MethodPost, "/items/a", a).Code)
	require.Equal(t, http.StatusCreated, performJSON(r, http.MethodPost, "/items/b", b).Code)

	w = performJSON(r, http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed map[string]item.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "A", listed["a"].Name)
	assert.Equal(t, "B", listed["b"].Name)
	assert.Equal(t, []string{"x"}, listed["b"].Tags)
}

// PUT must store the supplied payload, never re-store the old record.
func TestPutAppliesSuppliedPayload(t *testing.T) {
	r := newTestRouter()
	require.Equal(t, http.StatusCreated, performJSON(r, http.MethodPost, "/items/soda", sodaBody()).Code)

	replacement := map[string]interface{}{
		"name":        "Diet Soda",
		"description": "Less sugar.",
		"price":       1.49,
		"tags":        []string{"drink"},
	}
	w := performJSON(r, http.MethodPut, "/items/soda", replacement)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = performJSON(r, http.MethodGet, "/items/soda", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Diet Soda","description":"Less sugar.","price":1.49,"tags":["drink"]}`, w.Body.String())
}

func TestPutMissingItem(t *testing.T) {
	r := newTestRouter()
	w := performJSON(r, http.MethodPut, "/items/ghost", sodaBody())
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Item with id 'ghost' does not exist."}`, w.Body.String())
}

func TestPatchUpdatesOnlySuppliedFields(t *testing.T) {
	r := newTestRouter()
	require.Equal(t, http.StatusCreated, performJSON(r, http.MethodPost, "/items/soda", sodaBody()).Code)

	w := performJSON(r, http.MethodPatch, "/items/soda", map[string]interface{}{"price": 1.50})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = performJSON(r, http.MethodGet, "/items/soda", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Soda","description":"A tasty, sugary drink.","price":1.50,"tags":["drink","tasty"]}`, w.Body.String())
}

func TestPatchMissingItem(t *testing.T) {
	r := newTestRouter()
	w := performJSON(r, http.MethodPatch, "/items/ghost", map[string]interface{}{"price": 1.50})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Item with id 'ghost' does not exist."}`, w.Body.String())
}

func TestCreateRejectsIncompleteBody(t *testing.T) {
	r := newTestRouter()
	w := performJSON(r, http.MethodPost, "/items/soda", map[string]interface{}{"name": "Soda"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was stored.
	w = performJSON(r, http.MethodGet, "/items/soda", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestCreateAcceptsZeroPriceAndEmptyTags(t *testing.T) {
	r := newTestRouter()
	body := map[string]interface{}{"name": "Freebie", "description": "On the house.", "price": 0, "tags": []string{}}
	w := performJSON(r, http.MethodPost, "/items/freebie", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"Freebie","description":"On the house.","price":0,"tags":[]}`, w.Body.String())
}

func TestLandingPage(t *testing.T) {
	r := newTestRouter()
	w := performJSON(r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/items")
}

func TestHealth(t *testing.T) {
	r := newTestRouter()
	w := performJSON(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter()
	w := performJSON(r, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
