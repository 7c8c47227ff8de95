package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tagpress/internal/config"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/logging"
	"gorm.io/gorm"
)

var (
	databasePath string
	logLevel     string
)

// rootCmd is the blog maintenance CLI.
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "TagPress maintenance commands",
	Long: `Maintenance commands for a TagPress database.

Available subcommands:
  createadmin - Create an administrator account
  seed        - Fill the database with sample posts, tags and comments
  publish     - Publish a draft post by id`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel, true)
	},
}

func init() {
	cfg := config.Load()
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", cfg.DatabasePath, "path of the SQLite database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(createAdminCmd, seedCmd, publishCmd)
}

// openDatabase 打开并迁移 --db 指定的数据库
func openDatabase() (*gorm.DB, error) {
	if err := db.Init(databasePath); err != nil {
		return nil, fmt.Errorf("open database %s: %w", databasePath, err)
	}
	return db.DB, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
