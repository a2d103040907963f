package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"rsadesk/internal/desk"
	"rsadesk/internal/trade"

	"github.com/spf13/cobra"
)

func newOrderCmd(s *session, verb string) *cobra.Command {
	var (
		brokers  []string
		tickers  string
		quantity int
		dryRun   bool
	)
	side := trade.SideBuy
	if verb == "sell" {
		side = trade.SideSell
	}
	cmd := &cobra.Command{
		Use:     verb,
		Short:   fmt.Sprintf("Send a %s order to the selected brokers and record the output", side),
		Example: fmt.Sprintf("  rsadesk %s --brokers Schwab,Chase --tickers AAPL,MSFT --quantity 1 --dry-run", verb),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := s.app()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Desk().Submit(cmd.Context(), trade.Order{
				Side:     side,
				Brokers:  brokers,
				Tickers:  tickers,
				Quantity: quantity,
				DryRun:   dryRun,
			})
			if report.ID != "" {
				printReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				return err
			}
			return report.Err()
		},
	}
	cmd.Flags().StringSliceVarP(&brokers, "brokers", "b", nil, "broker(s) to trade on; \"All\" expands to every supported broker")
	cmd.Flags().StringVarP(&tickers, "tickers", "t", "", "comma separated ticker symbols")
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of shares")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "ask the bot not to place real orders")
	return cmd
}

func printReport(w io.Writer, r desk.RoundReport) {
	fmt.Fprintf(w, "Round   : %s\n", r.ID)
	fmt.Fprintf(w, "Order   : %s %d %s (dry=%v)\n", r.Order.Side, r.Order.Quantity, r.Order.Tickers, r.Order.DryRun)
	fmt.Fprintf(w, "Brokers : %d\n", len(r.Items))
	fmt.Fprintf(w, "Elapsed : %s\n", r.Elapsed().Truncate(time.Millisecond))
	for _, res := range r.Results {
		status := fmt.Sprintf("exit %d", res.ExitCode)
		if res.Err != nil {
			status = "error: " + res.Err.Error()
		}
		fmt.Fprintf(w, "\n[%s] %s\n", res.Item.Broker, status)
		for _, line := range res.Stdout {
			fmt.Fprintf(w, "  %s\n", line)
		}
		if len(res.Stderr) > 0 {
			fmt.Fprintf(w, "  stderr:\n    %s\n", strings.Join(res.Stderr, "\n    "))
		}
	}
}
