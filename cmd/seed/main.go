package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/kitchenkin/recipes/backend/config"
	"github.com/kitchenkin/recipes/backend/internal/database"
)

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Load reference and demo data into the recipe database",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(categoriesCmd, demoCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB connects with the application configuration and brings the schema up to date
func openDB() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		return nil, err
	}
	return db, nil
}
