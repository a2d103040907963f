package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(s *session) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Install the bot's Python requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.app()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Desk().Sync(cmd.Context())
			w := cmd.OutOrStdout()
			if !quiet {
				for _, line := range res.Stdout {
					fmt.Fprintln(w, line)
				}
			}
			for _, line := range res.Stderr {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "Syncing Complete.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "only print pip's stderr")
	return cmd
}
