package graph_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kitchenkin/recipes/backend/internal/graph"
	"github.com/kitchenkin/recipes/backend/internal/mocks"
	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/testhelpers"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

type graphFixture struct {
	db       *gorm.DB
	router   *gin.Engine
	detector *mocks.MockAllergenDetector
	remover  *mocks.MockImageRemover
	auth     *mocks.MockAuthService
	author   *models.User
	other    *models.User
	category *models.Category
}

type gqlResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func newGraphFixture(t *testing.T) *graphFixture {
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewSQLiteDB(t)

	f := &graphFixture{
		db:       db,
		detector: new(mocks.MockAllergenDetector),
		remover:  new(mocks.MockImageRemover),
		auth:     new(mocks.MockAuthService),
		author:   testhelpers.CreateUser(t, db),
		other:    testhelpers.CreateUser(t, db),
		category: testhelpers.CreateCategory(t, db, "Breakfast"),
	}

	recipes := service.NewRecipeService(
		repository.NewRecipeRepository(db),
		service.NewSideEffectCoordinator(new(mocks.MockImageIngester), f.detector),
		f.remover,
	)
	categories := service.NewCategoryService(repository.NewCategoryRepository(db))

	schema, err := graph.NewSchema(recipes, categories, f.auth)
	require.NoError(t, err)

	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			id := uuid.MustParse(raw)
			ctx := types.WithIdentity(c.Request.Context(), &types.Identity{ID: id})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	f.router.POST("/graphql", graph.NewHandler(schema).Serve)
	return f
}

func (f *graphFixture) do(t *testing.T, as *models.User, query string, vars map[string]interface{}) gqlResponse {
	t.Helper()
	body, err := json.Marshal(graph.Request{Query: query, Variables: vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("X-Test-User", as.ID.String())
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (f *graphFixture) recipeCount(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&n).Error)
	return n
}

func errorCode(t *testing.T, resp gqlResponse) string {
	t.Helper()
	require.NotEmpty(t, resp.Errors)
	code, _ := resp.Errors[0].Extensions["code"].(string)
	return code
}

const createMutation = `
mutation Create($data: CreateRecipeInput!) {
  createRecipe(data: $data) {
    id title servings allergens instructions
    category { name }
    author { id }
    ingredients { name amount unit }
  }
}`

func (f *graphFixture) createVars() map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"title":        "  Pancakes ",
			"description":  "Fluffy weekend pancakes",
			"prepTime":     "10 min",
			"cookTime":     "15 min",
			"servings":     4,
			"categoryId":   f.category.ID.String(),
			"instructions": []string{"Whisk", "Fry"},
			"ingredients": []map[string]string{
				{"name": "flour", "amount": "2", "unit": "cup"},
				{"name": "milk", "amount": "1", "unit": "cup"},
			},
		},
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newGraphFixture(t)
	f.detector.On("Detect", mock.Anything, "Pancakes", mock.Anything).
		Return([]models.Allergen{models.AllergenDairy, models.AllergenWheat}, nil).Once()

	resp := f.do(t, f.author, createMutation, f.createVars())
	require.Empty(t, resp.Errors)

	recipe := resp.Data["createRecipe"].(map[string]interface{})
	assert.Equal(t, "Pancakes", recipe["title"])
	assert.EqualValues(t, 4, recipe["servings"])
	assert.Equal(t, []interface{}{"Dairy", "Wheat"}, recipe["allergens"])
	assert.Equal(t, "Breakfast", recipe["category"].(map[string]interface{})["name"])
	assert.Equal(t, f.author.ID.String(), recipe["author"].(map[string]interface{})["id"])
	assert.Len(t, recipe["ingredients"], 2)
	f.detector.AssertExpectations(t)
}

func TestCreateRecipeRequiresIdentity(t *testing.T) {
	f := newGraphFixture(t)

	resp := f.do(t, nil, createMutation, f.createVars())

	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
	assert.Nil(t, resp.Data)
	assert.Zero(t, f.recipeCount(t))
	f.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRecipeValidationError(t *testing.T) {
	f := newGraphFixture(t)
	vars := f.createVars()
	vars["data"].(map[string]interface{})["prepTime"] = "ten minutes"

	resp := f.do(t, f.author, createMutation, vars)

	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	assert.Contains(t, resp.Errors[0].Message, "prepTime")
	assert.Zero(t, f.recipeCount(t))
}

func TestUpdateRecipeServingsOnly(t *testing.T) {
	f := newGraphFixture(t)
	existing := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)

	resp := f.do(t, f.author, `
mutation Update($data: UpdateRecipeInput!) {
  updateRecipe(data: $data) { title servings allergens }
}`, map[string]interface{}{
		"data": map[string]interface{}{"id": existing.ID.String(), "servings": 6},
	})
	require.Empty(t, resp.Errors)

	recipe := resp.Data["updateRecipe"].(map[string]interface{})
	assert.EqualValues(t, 6, recipe["servings"])
	assert.Equal(t, existing.Title, recipe["title"])
	assert.Equal(t, []interface{}{"Dairy"}, recipe["allergens"])
	f.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRecipeByOtherUserIsForbidden(t *testing.T) {
	f := newGraphFixture(t)
	existing := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)

	resp := f.do(t, f.other, `
mutation { updateRecipe(data: {id: "`+existing.ID.String()+`", title: "Mine now"}) { id } }`, nil)

	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))

	var stored models.Recipe
	require.NoError(t, f.db.First(&stored, "id = ?", existing.ID).Error)
	assert.Equal(t, existing.Title, stored.Title)
}

func TestUpdateRecipeRejectsImageWithClearImage(t *testing.T) {
	f := newGraphFixture(t)
	existing := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)

	resp := f.do(t, f.author, `
mutation {
  updateRecipe(data: {
    id: "`+existing.ID.String()+`",
    clearImage: true,
    image: {fileName: "a.png", fileType: "image/png", encoded: "aGk="}
  }) { id }
}`, nil)

	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
}

func TestDeleteRecipe(t *testing.T) {
	f := newGraphFixture(t)
	existing := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)
	f.remover.On("Remove", mock.Anything, existing.Image.ContentID).Return(nil).Once()

	resp := f.do(t, f.author, `mutation { deleteRecipe(id: "`+existing.ID.String()+`") { id title } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Equal(t, existing.Title, resp.Data["deleteRecipe"].(map[string]interface{})["title"])

	resp = f.do(t, nil, `{ recipe(id: "`+existing.ID.String()+`") { id } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Nil(t, resp.Data["recipe"])
	f.remover.AssertExpectations(t)
}

func TestDeleteRecipeRequiresIdentity(t *testing.T) {
	f := newGraphFixture(t)
	existing := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)

	resp := f.do(t, nil, `mutation { deleteRecipe(id: "`+existing.ID.String()+`") { id } }`, nil)

	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
	assert.EqualValues(t, 1, f.recipeCount(t))
}

func TestRecipesPagination(t *testing.T) {
	f := newGraphFixture(t)
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)
	}

	query := `query Page($after: String) {
  recipes(first: 2, after: $after) {
    edges { cursor node { id } }
    pageInfo { hasNextPage endCursor }
  }
}`
	resp := f.do(t, nil, query, nil)
	require.Empty(t, resp.Errors)
	page := resp.Data["recipes"].(map[string]interface{})
	assert.Len(t, page["edges"], 2)
	info := page["pageInfo"].(map[string]interface{})
	assert.Equal(t, true, info["hasNextPage"])

	resp = f.do(t, nil, query, map[string]interface{}{"after": info["endCursor"]})
	require.Empty(t, resp.Errors)
	page = resp.Data["recipes"].(map[string]interface{})
	assert.Len(t, page["edges"], 1)
	assert.Equal(t, false, page["pageInfo"].(map[string]interface{})["hasNextPage"])
}

func TestSearchRecipes(t *testing.T) {
	f := newGraphFixture(t)
	match := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)
	require.NoError(t, f.db.Model(match).Update("title", "Blueberry Muffins").Error)
	other := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)
	require.NoError(t, f.db.Model(other).Updates(map[string]interface{}{
		"title":       "Roast Chicken",
		"description": "Crispy skin and lemon",
	}).Error)

	resp := f.do(t, nil, `{ searchRecipes(query: "blueberry") { edges { node { id title } } } }`, nil)
	require.Empty(t, resp.Errors)

	edges := resp.Data["searchRecipes"].(map[string]interface{})["edges"].([]interface{})
	require.Len(t, edges, 1)
	node := edges[0].(map[string]interface{})["node"].(map[string]interface{})
	assert.Equal(t, match.ID.String(), node["id"])
}

func TestCategories(t *testing.T) {
	f := newGraphFixture(t)
	testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)

	resp := f.do(t, nil, `{ categories { id name recipes { edges { node { id } } } } }`, nil)
	require.Empty(t, resp.Errors)

	categories := resp.Data["categories"].([]interface{})
	require.Len(t, categories, 1)
	breakfast := categories[0].(map[string]interface{})
	assert.Equal(t, "Breakfast", breakfast["name"])
	assert.Len(t, breakfast["recipes"].(map[string]interface{})["edges"], 1)

	resp = f.do(t, nil, `{ category(id: "`+uuid.NewString()+`") { id } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Nil(t, resp.Data["category"])
}

func TestMe(t *testing.T) {
	f := newGraphFixture(t)

	resp := f.do(t, nil, `{ me { id email } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Nil(t, resp.Data["me"])

	f.auth.On("CurrentUser", mock.Anything).Return(f.author, nil).Once()
	resp = f.do(t, f.author, `{ me { id email } }`, nil)
	require.Empty(t, resp.Errors)
	me := resp.Data["me"].(map[string]interface{})
	assert.Equal(t, f.author.Email, me["email"])
}

func TestAuthorEmailHiddenFromOthers(t *testing.T) {
	f := newGraphFixture(t)
	existing := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)

	resp := f.do(t, f.other, `{ recipe(id: "`+existing.ID.String()+`") { author { name email } } }`, nil)
	require.Empty(t, resp.Errors)
	author := resp.Data["recipe"].(map[string]interface{})["author"].(map[string]interface{})
	assert.Equal(t, f.author.Name, author["name"])
	assert.Nil(t, author["email"])
}

func TestFavorites(t *testing.T) {
	f := newGraphFixture(t)
	existing := testhelpers.CreateRecipe(t, f.db, f.author.ID, f.category.ID)

	resp := f.do(t, f.other, `mutation { favoriteRecipe(id: "`+existing.ID.String()+`") { id } }`, nil)
	require.Empty(t, resp.Errors)

	resp = f.do(t, f.other, `{ favoriteRecipes { edges { node { id } } } }`, nil)
	require.Empty(t, resp.Errors)
	assert.Len(t, resp.Data["favoriteRecipes"].(map[string]interface{})["edges"], 1)

	resp = f.do(t, nil, `{ favoriteRecipes { edges { node { id } } } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
}

func TestInvalidRequestBody(t *testing.T) {
	f := newGraphFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"variables": {}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req.WithContext(context.Background()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type countingLimiter struct {
	calls int
	allow bool
}

func (l *countingLimiter) Check(c *gin.Context, _ string) bool {
	l.calls++
	if !l.allow {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	}
	return l.allow
}

func TestMutationLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	schema, err := graph.NewSchema(new(mocks.MockRecipeService), new(mocks.MockCategoryService), new(mocks.MockAuthService))
	require.NoError(t, err)

	limiter := &countingLimiter{}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx := types.WithIdentity(c.Request.Context(), &types.Identity{ID: uuid.New()})
		c.Request = c.Request.WithContext(ctx)
	})
	router.POST("/graphql", graph.NewHandler(schema).WithMutationLimiter(limiter).Serve)

	post := func(query string) int {
		body, _ := json.Marshal(graph.Request{Query: query})
		req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, post(`mutation { deleteRecipe(id: "x") { id } }`))
	assert.Equal(t, 1, limiter.calls)

	// queries are not counted
	assert.Equal(t, http.StatusOK, post(`{ __typename }`))
	assert.Equal(t, 1, limiter.calls)
}
