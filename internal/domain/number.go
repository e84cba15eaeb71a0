package domain

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// The legacy snapshots store numeric fields as whatever the entry form held:
// JSON numbers, numeric strings, empty strings, sometimes garbage. FlexFloat
// and FlexInt absorb all of it, degrading to zero instead of failing the
// whole array load.

type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat(coerceFloat(data))
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

func (f FlexFloat) Value() float64 { return float64(f) }

type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	*n = FlexInt(int(coerceFloat(data)))
	return nil
}

func (n FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(n))), nil
}

func (n FlexInt) Value() int { return int(n) }

func coerceFloat(data []byte) float64 {
	raw := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if raw == "" || raw == "null" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	// ParseFloat accepts "NaN" and "Inf" tokens, which would poison every
	// balance they touch and cannot be re-marshalled as JSON numbers.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
