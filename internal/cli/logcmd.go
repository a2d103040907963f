package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"rsadesk/internal/store"

	"github.com/spf13/cobra"
)

func newLogCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect or clear the output log",
	}
	cmd.AddCommand(newLogShowCmd(s))
	cmd.AddCommand(newLogClearCmd(s))
	return cmd
}

func newLogShowCmd(s *session) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the output log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.app()
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.Desk().Rows(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOutput {
				if rows == nil {
					rows = []store.Row{}
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(w, "(empty)")
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BROKER\tSIDE\tTICKERS\tOUTPUT")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", dash(r.Broker), dash(r.Side), dash(strings.Join(r.Tickers, ",")), r.Output)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print rows as JSON")
	return cmd
}

func newLogClearCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the output log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.app()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Desk().Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Output cleared.")
			return nil
		},
	}
}

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
