package trade

import (
	"fmt"
	"strconv"
	"strings"
)

// Side is the direction of a trading instruction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide accepts buy/sell in any case.
func ParseSide(raw string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(raw))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("unknown side %q (want BUY or SELL)", raw)
	}
}

// AllBrokers is the aggregate selection that expands to the whole catalog.
const AllBrokers = "All"

// groupSelectors never become work items on their own when "All" expands.
var groupSelectors = map[string]struct{}{
	"All":  {},
	"Most": {},
	"Day1": {},
}

// IsGroupSelector reports whether name is one of the pseudo-broker groups.
func IsGroupSelector(name string) bool {
	_, ok := groupSelectors[name]
	return ok
}

// Order is one submission from the panel, before validation.
type Order struct {
	Side     Side
	Brokers  []string
	Tickers  string
	Quantity int
	DryRun   bool
}

// WorkItem is one concrete instruction for a single broker.
type WorkItem struct {
	Side     Side
	Quantity int
	Tickers  []string
	Broker   string
	DryRun   bool
}

// Args renders the positional arguments the bot script expects:
// side, quantity, comma-joined tickers, broker, dry-run flag.
func (w WorkItem) Args() []string {
	return []string{
		string(w.Side),
		strconv.Itoa(w.Quantity),
		strings.Join(w.Tickers, ","),
		w.Broker,
		formatBool(w.DryRun),
	}
}

func (w WorkItem) String() string {
	return fmt.Sprintf("%s %d %s @%s dry=%v", w.Side, w.Quantity, strings.Join(w.Tickers, ","), w.Broker, w.DryRun)
}

// formatBool matches the capitalised booleans the script parses.
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
