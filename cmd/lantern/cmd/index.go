package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newIndexCmd creates the index command: one reconciliation pass over
// every configured source.
func newIndexCmd() *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Run one indexing pass over the configured sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			matched := false
			var failures int
			for _, src := range a.sources {
				if only != "" && src.Name() != only {
					continue
				}
				matched = true

				if err := a.reconciler.Reconcile(ctx, src); err != nil {
					failures++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", src.Name(), err)
					continue
				}
				stats, ok := a.reconciler.LastCycle(src.Name())
				if !ok {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"%s: %d indexed, %d skipped, %d swept (%s)\n",
					stats.Source, stats.Upserted, stats.Skipped, stats.Swept,
					stats.Duration.Round(time.Millisecond))
			}

			if only != "" && !matched {
				return fmt.Errorf("no source named %q", only)
			}
			if failures > 0 {
				return fmt.Errorf("%d source(s) failed", failures)
			}

			total, err := a.store.DocCount()
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "index now holds %d documents\n", total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&only, "source", "", "Index only the named source")
	return cmd
}
