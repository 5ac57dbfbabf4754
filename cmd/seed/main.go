package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/seed"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "seed",
		Short: "Seed the development database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if err := logger.Initialize(os.Getenv("LOG_LEVEL"), "seed.log"); err != nil {
				return err
			}
			if err := database.Initialize(); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			return database.Migrate()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			database.Close()
			logger.Close()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "dev",
		Short: "Fill the database with realistic development data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed.NewSeeder(database.DB).SeedDev()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Delete all rows from every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed.NewSeeder(database.DB).Clean()
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
