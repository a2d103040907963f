package trade

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MsgBrokersEmpty    = "Broker selection is empty, please select your broker(s)."
	MsgTickersEmpty    = "Ticker(s) is empty please input your ticker(s)"
	MsgQuantityInvalid = "Quantity must be a positive integer."
	MsgGroupSelector   = "Broker group %q cannot be traded on its own, pick its brokers or All."

	FieldBrokers  = "brokers"
	FieldTickers  = "tickers"
	FieldQuantity = "quantity"
)

// ValidationError is returned for input the user must correct before anything
// is dispatched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Validate checks the order in the same order the panel reports problems:
// brokers, then tickers, then quantity. It returns the ticker list on success.
func Validate(o Order) ([]string, error) {
	if len(o.Brokers) == 0 {
		return nil, &ValidationError{Field: FieldBrokers, Message: MsgBrokersEmpty}
	}
	for _, broker := range o.Brokers {
		if broker != AllBrokers && IsGroupSelector(broker) {
			return nil, &ValidationError{Field: FieldBrokers, Message: fmt.Sprintf(MsgGroupSelector, broker)}
		}
	}
	if o.Tickers == "" {
		return nil, &ValidationError{Field: FieldTickers, Message: MsgTickersEmpty}
	}
	if o.Quantity <= 0 {
		return nil, &ValidationError{Field: FieldQuantity, Message: MsgQuantityInvalid}
	}
	return SplitTickers(o.Tickers), nil
}

// SplitTickers splits on commas. Symbols are passed through as typed.
func SplitTickers(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, ",")
}
