package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	dbembed "github.com/vsarchitect/vsa/db"
	"github.com/vsarchitect/vsa/internal/config"
	"github.com/vsarchitect/vsa/internal/db"
	"github.com/vsarchitect/vsa/internal/logger"
)

// migrateCmd manages the settings_snapshots schema used by the postgres storage driver.
var migrateCmd = &cobra.Command{
	Use:   "migrate <up|down|version|force> [version]",
	Short: "Run database migrations for the postgres storage driver",
	Long: `Apply or roll back the embedded SQL migrations against the database
configured in the [postgres] section.

Examples:
  vsa migrate up
  vsa migrate version
  vsa migrate force 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		if _, _, err := db.ParseMigrateCommand(args[0], args[1:]); err != nil {
			return err
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level, cfg.Log.Format)

		migrations, err := fs.Sub(dbembed.MigrationsFS, dbembed.MigrationsDir)
		if err != nil {
			return fmt.Errorf("embedded migrations: %w", err)
		}
		return db.RunMigrate(logger.L, cfg.Postgres, migrations, args[0], args[1:])
	},
}
