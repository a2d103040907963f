package trade

// Expand turns a validated order into one work item per concrete broker.
// "All" becomes every catalog entry that is not a group selector, in catalog
// order; every other selection is taken as a single broker, so the other group
// selectors must already have been rejected by Validate. Selecting "All"
// together with a broker it already covers yields two items for that broker.
func Expand(o Order, tickers []string, catalog []string) []WorkItem {
	items := make([]WorkItem, 0, len(o.Brokers))
	for _, selected := range o.Brokers {
		if selected == AllBrokers {
			for _, broker := range catalog {
				if IsGroupSelector(broker) {
					continue
				}
				items = append(items, newWorkItem(o, tickers, broker))
			}
			continue
		}
		items = append(items, newWorkItem(o, tickers, selected))
	}
	return items
}

// Plan validates and expands in one step.
func Plan(o Order, catalog []string) ([]WorkItem, error) {
	tickers, err := Validate(o)
	if err != nil {
		return nil, err
	}
	return Expand(o, tickers, catalog), nil
}

func newWorkItem(o Order, tickers []string, broker string) WorkItem {
	return WorkItem{
		Side:     o.Side,
		Quantity: o.Quantity,
		Tickers:  append([]string(nil), tickers...),
		Broker:   broker,
		DryRun:   o.DryRun,
	}
}
