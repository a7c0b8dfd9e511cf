package billing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxSeatsFromMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
		kind     MaxSeatsKind
		want     int
	}{
		{"nil metadata", nil, MaxSeatsAbsent, 1},
		{"missing key", map[string]interface{}{"other": "5"}, MaxSeatsAbsent, 1},
		{"explicit null", map[string]interface{}{"max_seats": nil}, MaxSeatsAbsent, 1},
		{"numeric string", map[string]interface{}{"max_seats": "10"}, MaxSeatsString, 10},
		{"string with suffix", map[string]interface{}{"max_seats": "25 seats"}, MaxSeatsString, 25},
		{"padded string", map[string]interface{}{"max_seats": "  7"}, MaxSeatsString, 7},
		{"unparseable string", map[string]interface{}{"max_seats": "unlimited"}, MaxSeatsString, 1},
		{"empty string", map[string]interface{}{"max_seats": ""}, MaxSeatsString, 1},
		{"json float", map[string]interface{}{"max_seats": float64(10)}, MaxSeatsNumber, 10},
		{"int", map[string]interface{}{"max_seats": 3}, MaxSeatsNumber, 3},
		{"json number", map[string]interface{}{"max_seats": json.Number("40")}, MaxSeatsNumber, 40},
		{"fractional float", map[string]interface{}{"max_seats": 2.5}, MaxSeatsAbsent, 1},
		{"huge float", map[string]interface{}{"max_seats": 1e300}, MaxSeatsAbsent, 1},
		{"nan", map[string]interface{}{"max_seats": math.NaN()}, MaxSeatsAbsent, 1},
		{"infinity", map[string]interface{}{"max_seats": math.Inf(1)}, MaxSeatsAbsent, 1},
		{"huge int64", map[string]interface{}{"max_seats": int64(math.MaxInt64)}, MaxSeatsAbsent, 1},
		{"fractional json number", map[string]interface{}{"max_seats": json.Number("7.5")}, MaxSeatsAbsent, 1},
		{"whole json number with exponent", map[string]interface{}{"max_seats": json.Number("1e2")}, MaxSeatsNumber, 100},
		{"bool is ignored", map[string]interface{}{"max_seats": true}, MaxSeatsAbsent, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seats := MaxSeatsFromMetadata(tt.metadata)
			assert.Equal(t, tt.kind, seats.Kind)
			assert.Equal(t, tt.want, seats.Resolve())
		})
	}
}
