package main

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

const demoPassword = "demo-password"

var (
	demoUsers   int
	demoRecipes int
	demoSeed    int64
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create demo cooks and recipes for local development",
	Long: `Create demo users, each authoring a few recipes in the existing
categories. Run "seed categories" first. Every demo user signs in with
the password "` + demoPassword + `".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if demoSeed != 0 {
			gofakeit.Seed(demoSeed)
		}

		db, err := openDB()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		categories, err := repository.NewCategoryRepository(db).List(ctx)
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			return fmt.Errorf("no categories found; run \"seed categories\" first")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		users := repository.NewUserRepository(db)
		recipes := repository.NewRecipeRepository(db)
		for i := 0; i < demoUsers; i++ {
			user := &models.User{
				Name:         gofakeit.Name(),
				Email:        gofakeit.Email(),
				PasswordHash: string(hash),
			}
			if err := users.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to create demo user: %w", err)
			}

			for j := 0; j < demoRecipes; j++ {
				category := categories[gofakeit.Number(0, len(categories)-1)]
				if err := createDemoRecipe(ctx, recipes, user, category); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", user.Email, user.Name)
		}
		return nil
	},
}

func init() {
	demoCmd.Flags().IntVar(&demoUsers, "users", 3, "Number of demo users")
	demoCmd.Flags().IntVar(&demoRecipes, "recipes", 4, "Recipes per demo user")
	demoCmd.Flags().Int64Var(&demoSeed, "seed", 0, "Random seed for reproducible data")
}

func createDemoRecipe(ctx context.Context, recipes repository.RecipeRepository, author *models.User, category *models.Category) error {
	title := gofakeit.Dessert()
	description := gofakeit.Sentence(14)

	lines := make([]types.IngredientInput, gofakeit.Number(2, 6))
	for i := range lines {
		lines[i] = types.IngredientInput{
			Name:   gofakeit.Noun(),
			Amount: fmt.Sprintf("%d", gofakeit.Number(1, 4)),
			Unit:   gofakeit.RandomString([]string{"cup", "tbsp", "tsp", "g", "whole"}),
		}
	}

	instructions := make(models.StringList, gofakeit.Number(2, 5))
	for i := range instructions {
		instructions[i] = gofakeit.Sentence(8)
	}

	recipe := &models.Recipe{
		Title:        title,
		Description:  description,
		PrepTime:     fmt.Sprintf("%d min", gofakeit.Number(5, 30)),
		CookTime:     fmt.Sprintf("%d min", gofakeit.Number(10, 90)),
		Servings:     gofakeit.Number(1, 8),
		Instructions: instructions,
		Allergens:    models.AllergenList{},
		Embedding:    service.RecipeEmbedding(title, description),
		CategoryID:   category.ID,
		AuthorID:     author.ID,
	}

	return recipes.Transaction(ctx, func(tx repository.RecipeTx) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return err
		}
		ingredients, err := tx.UpsertIngredients(ctx, service.ResolveIngredients(lines))
		if err != nil {
			return err
		}
		return tx.LinkIngredients(ctx, recipe.ID, ingredients)
	})
}
