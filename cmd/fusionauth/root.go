package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "fusionauth",
		Short:         "FusionAuth management API client and webhook trigger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Context())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (yaml, json or toml)")
	flags.StringVar(&a.logLevel, "log-level", a.logLevel, "log level: debug, info, warn, error")
	flags.BoolVar(&a.logJSON, "log-json", false, "write logs as JSON")
	flags.StringVar(&a.overrides.Credentials.InstanceURL, "instance-url", "", "FusionAuth base URL")
	flags.StringVar(&a.overrides.Credentials.APIKey, "api-key", "", "FusionAuth API key")
	flags.StringVar(&a.overrides.Credentials.TenantID, "tenant-id", "", "default tenant id")

	root.AddCommand(
		newStatusCommand(a),
		newExecCommand(a),
		newOperationsCommand(a),
		newEventsCommand(a),
		newTriggerCommand(a),
		newMigrateCommand(a),
	)
	return root
}
