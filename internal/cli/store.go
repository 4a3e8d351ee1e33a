package cli

import (
	"fmt"
	"os"

	"github.com/logbot/logbot/internal/app"
	"github.com/logbot/logbot/internal/logschema"
	"github.com/logbot/logbot/internal/logstore"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the log tables in the SQLite or Postgres store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(false)
			if err != nil {
				return err
			}
			store, err := app.OpenSQLStore(cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			dialect := app.GooseDialect(cfg.StoreDriver)
			if err := logstore.Migrate(store.DB(), dialect); err != nil {
				return err
			}
			version, err := logstore.MigrationVersion(store.DB(), dialect)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var table, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV file into one of the log tables",
		Long: `Load a CSV file into one of the log tables. The header row must name
columns of the table; the store is migrated first.

Example:
  logbot import --table vpc_logs --file vpc_logs.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl, ok := logschema.Default().Table(table)
			if !ok {
				return fmt.Errorf("unknown table %q (want one of %v)", table, logschema.Default().TableNames())
			}
			cfg, err := opts.load(false)
			if err != nil {
				return err
			}
			store, err := app.OpenSQLStore(cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := logstore.Migrate(store.DB(), app.GooseDialect(cfg.StoreDriver)); err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := store.ImportCSV(cmd.Context(), tbl, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s\n", n, tbl.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "target table")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
