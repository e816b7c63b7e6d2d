package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kostyay/netinspect/internal/release"
)

var checkLatest bool

// newChecker is swapped in tests.
var newChecker = func() *release.Checker {
	return release.NewChecker("kostyay", "netinspect")
}

func init() {
	versionCmd.Flags().BoolVar(&checkLatest, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the netinspect version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "netinspect %s\n", version)
		if !checkLatest {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		latest, err := newChecker().CheckLatest(ctx, version)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		if latest == "" {
			fmt.Fprintln(out, "You are running the latest release.")
			return nil
		}
		fmt.Fprintf(out, "A newer release is available: %s\n", latest)
		return nil
	},
}
