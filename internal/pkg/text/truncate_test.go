package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "AAPL", 10, "AAPL"},
		{"exact", "AAPL", 4, "AAPL"},
		{"cut", "Schwab: order placed", 6, "Schwab..."},
		{"multibyte", "买入成功了", 2, "买入..."},
		{"no limit", "anything", 0, "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}
