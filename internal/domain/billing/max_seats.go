// internal/domain/billing/max_seats.go
package billing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	MaxSeatsMetadataKey = "max_seats"
	DefaultMaxSeats     = 1
)

type MaxSeatsKind int

const (
	MaxSeatsAbsent MaxSeatsKind = iota
	MaxSeatsString
	MaxSeatsNumber
)

// MaxSeats is the max_seats metadata entry before it is resolved to a seat count.
type MaxSeats struct {
	Kind   MaxSeatsKind
	Raw    string
	Number int
}

// MaxSeatsFromMetadata classifies the max_seats entry. Values of any other JSON
// type are treated as absent.
func MaxSeatsFromMetadata(metadata map[string]interface{}) MaxSeats {
	v, ok := metadata[MaxSeatsMetadataKey]
	if !ok || v == nil {
		return MaxSeats{Kind: MaxSeatsAbsent}
	}

	switch n := v.(type) {
	case string:
		return MaxSeats{Kind: MaxSeatsString, Raw: n}
	case float64:
		return maxSeatsFromFloat(n)
	case int:
		return maxSeatsFromInt(int64(n))
	case int64:
		return maxSeatsFromInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return maxSeatsFromInt(i)
		}
		if f, err := n.Float64(); err == nil {
			return maxSeatsFromFloat(f)
		}
		return MaxSeats{Kind: MaxSeatsString, Raw: n.String()}
	default:
		return MaxSeats{Kind: MaxSeatsAbsent}
	}
}

// Seat bounds outside this range cannot be a real plan.
const maxSeatsLimit = math.MaxInt32

func maxSeatsFromInt(n int64) MaxSeats {
	if n > maxSeatsLimit || n < -maxSeatsLimit {
		return MaxSeats{Kind: MaxSeatsAbsent}
	}
	return MaxSeats{Kind: MaxSeatsNumber, Number: int(n)}
}

// maxSeatsFromFloat accepts only whole numbers; 2.5 seats is treated as absent.
func maxSeatsFromFloat(f float64) MaxSeats {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return MaxSeats{Kind: MaxSeatsAbsent}
	}
	if f > maxSeatsLimit || f < -maxSeatsLimit {
		return MaxSeats{Kind: MaxSeatsAbsent}
	}
	return MaxSeats{Kind: MaxSeatsNumber, Number: int(f)}
}

// Resolve returns the seat bound, DefaultMaxSeats when absent or unparseable.
func (m MaxSeats) Resolve() int {
	switch m.Kind {
	case MaxSeatsNumber:
		return m.Number
	case MaxSeatsString:
		if n, ok := parseIntPrefix(m.Raw); ok {
			return n
		}
	}
	return DefaultMaxSeats
}

// parseIntPrefix reads an optionally signed run of base-10 digits after leading
// whitespace, ignoring trailing characters ("10 seats" -> 10).
func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
