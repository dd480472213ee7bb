package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kitchenkin/recipes/backend/internal/repository"
)

var categoriesFile string

type categoriesDocument struct {
	Categories []string `yaml:"categories"`
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Create the recipe categories listed in a YAML file",
	Long: `Create every category listed in the YAML file. Categories that already
exist are left untouched, so the command can be re-run safely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := loadCategories(categoriesFile)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		repo := repository.NewCategoryRepository(db)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		for _, name := range names {
			category, err := repo.Ensure(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", category.ID, category.Name)
		}
		return nil
	},
}

func init() {
	categoriesCmd.Flags().StringVarP(&categoriesFile, "file", "f", "seed/categories.yaml", "YAML file listing category names")
}

// loadCategories reads category names, trimming blanks and duplicates
func loadCategories(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc categoriesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, raw := range doc.Categories {
		name := strings.TrimSpace(raw)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s lists no categories", path)
	}
	return names, nil
}
