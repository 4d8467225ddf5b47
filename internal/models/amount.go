package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrNotNumeric = errors.New("value is not numeric")

// Amount is a money value in major units (dollars). It decodes from a JSON
// number or from a numeric string, so "12.50" and 12.5 are the same price.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s", ErrNotNumeric, raw)
	}
	*a = Amount(v)
	return nil
}

func (a Amount) Float64() float64 { return float64(a) }

// MinorUnits returns the amount in cents, rounded half away from zero.
func (a Amount) MinorUnits() int64 {
	return int64(math.Round(float64(a) * 100))
}
