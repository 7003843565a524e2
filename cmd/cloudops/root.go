package main

import (
	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagAPIBaseURL string
	flagNoPersist  bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cloudops",
		Short:         "Terminal client for the CloudOps operations backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to config file (default: user config dir)")
	root.PersistentFlags().StringVar(&flagAPIBaseURL, "api-url", "", "API base URL (overrides config)")
	root.PersistentFlags().BoolVar(&flagNoPersist, "no-persist", false, "keep tokens in memory only, never write them to disk")

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		newEmployeesCommand(),
		newAttendanceCommand(),
		newLeavesCommand(),
		newTasksCommand(),
		newFinanceCommand(),
		newDocumentsCommand(),
		newAuditCommand(),
		newNotificationsCommand(),
		newWatchCommand(),
	)
	return root
}

func currentApp() (*app, error) {
	return newApp(flagConfigPath, flagAPIBaseURL, flagNoPersist)
}
