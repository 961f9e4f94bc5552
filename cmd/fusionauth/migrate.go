package main

import (
	"github.com/goliatone/go-fusionauth/core"
	sqlstore "github.com/goliatone/go-fusionauth/store/sql"
	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the event ledger migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !sqlDriver(a.config.Store.Driver) {
				return core.NewBadInputError("migrate needs store.driver sqlite3 or postgres")
			}
			client, err := sqlstore.Open(a.config.Store)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := sqlstore.Migrate(background(cmd.Context()), client, a.config.Store.Driver); err != nil {
				return err
			}
			a.logger.Info("migrations applied", "driver", a.config.Store.Driver)
			return nil
		},
	}
}
