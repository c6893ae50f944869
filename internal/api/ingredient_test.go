package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/testhelpers"
)

func listIngredientNames(t *testing.T, a *testAPI, path string) []string {
	t.Helper()

	w := a.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Ingredients []IngredientResponse `json:"ingredients"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	names := make([]string, 0, len(resp.Ingredients))
	for _, i := range resp.Ingredients {
		names = append(names, i.Name)
	}
	return names
}

func TestListIngredientsPrefixSearch(t *testing.T) {
	a := setupTestAPI(t)

	testhelpers.CreateTestIngredient(t, a.db, "flour", "g")
	testhelpers.CreateTestIngredient(t, a.db, "flax seeds", "g")
	testhelpers.CreateTestIngredient(t, a.db, "salt", "g")

	assert.Len(t, listIngredientNames(t, a, "/api/v1/ingredients"), 3)
	assert.Equal(t, []string{"flax seeds", "flour"}, listIngredientNames(t, a, "/api/v1/ingredients?name=fl"))
	assert.Equal(t, []string{"flax seeds", "flour"}, listIngredientNames(t, a, "/api/v1/ingredients?name=FL"))
}

func TestListIngredientsSearchEscapesWildcards(t *testing.T) {
	a := setupTestAPI(t)

	testhelpers.CreateTestIngredient(t, a.db, "flour", "g")
	testhelpers.CreateTestIngredient(t, a.db, "100% cocoa", "g")

	// A literal % is not a match-everything wildcard.
	assert.Empty(t, listIngredientNames(t, a, "/api/v1/ingredients?name=%25"))
	assert.Equal(t, []string{"100% cocoa"}, listIngredientNames(t, a, "/api/v1/ingredients?name=100%25"))

	// Same for underscore.
	assert.Empty(t, listIngredientNames(t, a, "/api/v1/ingredients?name=_"))
}
