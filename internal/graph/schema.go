// Package graph exposes recipes, categories and the signed-in user over
// GraphQL. The schema is built in code with graphql-go and every field
// resolves through the service layer.
package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/service"
)

type schemaBuilder struct {
	r *Resolver

	allergen   *graphql.Enum
	user       *graphql.Object
	image      *graphql.Object
	ingredient *graphql.Object
	category   *graphql.Object
	recipe     *graphql.Object
	edge       *graphql.Object
	pageInfo   *graphql.Object
	connection *graphql.Object

	ingredientInput *graphql.InputObject
	imageInput      *graphql.InputObject
	createInput     *graphql.InputObject
	updateInput     *graphql.InputObject
}

// NewSchema builds the GraphQL schema over the given services
func NewSchema(recipes service.IRecipeService, categories service.ICategoryService, auth service.IAuthService) (graphql.Schema, error) {
	b := &schemaBuilder{r: &Resolver{recipes: recipes, categories: categories, auth: auth}}
	b.types()
	b.inputs()

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.query(),
		Mutation: b.mutation(),
	})
}

func (b *schemaBuilder) types() {
	values := graphql.EnumValueConfigMap{}
	for _, a := range models.Allergens {
		values[string(a)] = &graphql.EnumValueConfig{Value: string(a)}
	}
	b.allergen = graphql.NewEnum(graphql.EnumConfig{Name: "Allergen", Values: values})

	b.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: userField(func(u *models.User) interface{} { return u.ID.String() })},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: userField(func(u *models.User) interface{} { return u.Name })},
			"image": &graphql.Field{Type: graphql.String, Resolve: userField(func(u *models.User) interface{} {
				if u.Image == nil {
					return nil
				}
				return *u.Image
			})},
			"email": &graphql.Field{Type: graphql.String, Resolve: b.r.userEmail},
		},
	})

	b.image = graphql.NewObject(graphql.ObjectConfig{
		Name: "Image",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: imageField(func(i *models.Image) interface{} { return i.ID.String() })},
			"original":  &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: imageField(func(i *models.Image) interface{} { return i.Original })},
			"optimized": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: imageField(func(i *models.Image) interface{} { return i.Optimized })},
			"small":     &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: imageField(func(i *models.Image) interface{} { return i.Small })},
			"medium":    &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: imageField(func(i *models.Image) interface{} { return i.Medium })},
			"large":     &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: imageField(func(i *models.Image) interface{} { return i.Large })},
		},
	})

	b.ingredient = graphql.NewObject(graphql.ObjectConfig{
		Name: "Ingredient",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: ingredientField(func(i *models.Ingredient) interface{} { return i.ID.String() })},
			"name":   &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: ingredientField(func(i *models.Ingredient) interface{} { return i.Name })},
			"amount": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: ingredientField(func(i *models.Ingredient) interface{} { return i.Amount })},
			"unit":   &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: ingredientField(func(i *models.Ingredient) interface{} { return i.Unit })},
		},
	})

	// Category and Recipe refer to each other, so their fields are thunks
	b.category = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: (graphql.FieldsThunk)(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: categoryField(func(c *models.Category) interface{} { return c.ID.String() })},
				"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: categoryField(func(c *models.Category) interface{} { return c.Name })},
				"recipes": &graphql.Field{
					Type:    graphql.NewNonNull(b.connection),
					Args:    pageArgs(),
					Resolve: b.r.categoryRecipes,
				},
			}
		}),
	})

	b.recipe = graphql.NewObject(graphql.ObjectConfig{
		Name: "Recipe",
		Fields: (graphql.FieldsThunk)(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.ID.String() })},
				"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.Title })},
				"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.Description })},
				"prepTime":    &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.PrepTime })},
				"cookTime":    &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.CookTime })},
				"servings":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.Servings })},
				"instructions": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
					Resolve: recipeField(func(r *models.Recipe) interface{} { return []string(r.Instructions) }),
				},
				"allergens": &graphql.Field{
					Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.allergen))),
					Resolve: recipeField(func(r *models.Recipe) interface{} {
						out := make([]string, len(r.Allergens))
						for i, a := range r.Allergens {
							out[i] = string(a)
						}
						return out
					}),
				},
				"ingredients": &graphql.Field{
					Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.ingredient))),
					Resolve: recipeField(func(r *models.Recipe) interface{} {
						out := make([]*models.Ingredient, len(r.Ingredients))
						for i := range r.Ingredients {
							out[i] = &r.Ingredients[i]
						}
						return out
					}),
				},
				"category": &graphql.Field{Type: b.category, Resolve: recipeField(func(r *models.Recipe) interface{} {
					if r.Category == nil {
						return nil
					}
					return r.Category
				})},
				"author": &graphql.Field{Type: b.user, Resolve: recipeField(func(r *models.Recipe) interface{} {
					if r.Author == nil {
						return nil
					}
					return r.Author
				})},
				"image": &graphql.Field{Type: b.image, Resolve: recipeField(func(r *models.Recipe) interface{} {
					if r.Image == nil {
						return nil
					}
					return r.Image
				})},
				"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.CreatedAt.UTC() })},
				"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime), Resolve: recipeField(func(r *models.Recipe) interface{} { return r.UpdatedAt.UTC() })},
			}
		}),
	})

	b.edge = graphql.NewObject(graphql.ObjectConfig{
		Name: "RecipeEdge",
		Fields: graphql.Fields{
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"node":   &graphql.Field{Type: graphql.NewNonNull(b.recipe)},
		},
	})

	b.pageInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"endCursor":   &graphql.Field{Type: graphql.String},
		},
	})

	b.connection = graphql.NewObject(graphql.ObjectConfig{
		Name: "RecipeConnection",
		Fields: graphql.Fields{
			"edges":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.edge)))},
			"pageInfo": &graphql.Field{Type: graphql.NewNonNull(b.pageInfo)},
		},
	})
}

func (b *schemaBuilder) inputs() {
	b.ingredientInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "IngredientInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"amount": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"unit":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	b.imageInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ImageInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"fileName": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"fileType": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"encoded":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String), Description: "base64 encoded file contents"},
		},
	})

	b.createInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateRecipeInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"prepTime":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"cookTime":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"servings":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"categoryId":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"instructions": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			"ingredients":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.ingredientInput)))},
			"image":        &graphql.InputObjectFieldConfig{Type: b.imageInput},
		},
	})

	b.updateInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "UpdateRecipeInput",
		Description: "Only the fields present are changed. Lists replace the stored list as a whole.",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"title":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"description":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"prepTime":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"cookTime":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"servings":     &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"categoryId":   &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"instructions": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			"ingredients":  &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(b.ingredientInput))},
			"image":        &graphql.InputObjectFieldConfig{Type: b.imageInput},
			"clearImage":   &graphql.InputObjectFieldConfig{Type: graphql.Boolean, Description: "remove the recipe's current image"},
		},
	})
}

func (b *schemaBuilder) query() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"recipes": &graphql.Field{
				Type:    graphql.NewNonNull(b.connection),
				Args:    pageArgs(),
				Resolve: b.r.listRecipes,
			},
			"recipe": &graphql.Field{
				Type:    b.recipe,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: b.r.recipe,
			},
			"searchRecipes": &graphql.Field{
				Type: graphql.NewNonNull(b.connection),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"first": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageSize},
					"after": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: b.r.searchRecipes,
			},
			"myRecipes": &graphql.Field{
				Type:    graphql.NewNonNull(b.connection),
				Args:    pageArgs(),
				Resolve: b.r.myRecipes,
			},
			"favoriteRecipes": &graphql.Field{
				Type:    graphql.NewNonNull(b.connection),
				Args:    pageArgs(),
				Resolve: b.r.favoriteRecipes,
			},
			"categories": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.category))),
				Resolve: b.r.listCategories,
			},
			"category": &graphql.Field{
				Type:    b.category,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: b.r.category,
			},
			"me": &graphql.Field{
				Type:    b.user,
				Resolve: b.r.me,
			},
		},
	})
}

func (b *schemaBuilder) mutation() *graphql.Object {
	idArg := graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}}
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createRecipe": &graphql.Field{
				Type:    graphql.NewNonNull(b.recipe),
				Args:    graphql.FieldConfigArgument{"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(b.createInput)}},
				Resolve: b.r.createRecipe,
			},
			"updateRecipe": &graphql.Field{
				Type:    graphql.NewNonNull(b.recipe),
				Args:    graphql.FieldConfigArgument{"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(b.updateInput)}},
				Resolve: b.r.updateRecipe,
			},
			"deleteRecipe": &graphql.Field{
				Type:    b.recipe,
				Args:    idArg,
				Resolve: b.r.deleteRecipe,
			},
			"favoriteRecipe": &graphql.Field{
				Type:    graphql.NewNonNull(b.recipe),
				Args:    idArg,
				Resolve: b.r.favoriteRecipe,
			},
			"unfavoriteRecipe": &graphql.Field{
				Type:    graphql.NewNonNull(b.recipe),
				Args:    idArg,
				Resolve: b.r.unfavoriteRecipe,
			},
		},
	})
}

func pageArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"first": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageSize},
		"after": &graphql.ArgumentConfig{Type: graphql.String},
	}
}
