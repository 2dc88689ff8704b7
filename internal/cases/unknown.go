package cases

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UnknownNumber is a numeric value that may carry no information at all.
// The zero value is Unknown. A known value is always finite; absence is
// never encoded as 0 or an empty string at the domain level.
type UnknownNumber struct {
	value float64
	known bool
}

// Unknown is the sentinel for "no data available".
var Unknown = UnknownNumber{}

// KnownNumber wraps a float64 as a known value. Non-finite inputs collapse
// to Unknown so NaN/Inf can never enter the domain.
func KnownNumber(v float64) UnknownNumber {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unknown
	}
	return UnknownNumber{value: v, known: true}
}

// UnknownNumberFromText parses human-editable text. Blank input and
// malformed numeric text both mean "no information"; this parse never fails.
func UnknownNumberFromText(s string) UnknownNumber {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Unknown
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Unknown
	}
	return KnownNumber(n)
}

// Known reports whether the value carries information.
func (u UnknownNumber) Known() bool {
	return u.known
}

// Float returns the numeric value and whether it is known.
func (u UnknownNumber) Float() (float64, bool) {
	return u.value, u.known
}

// EditableText renders the value for form editing: "" for Unknown, otherwise
// the shortest decimal string that parses back to the exact same float64.
func (u UnknownNumber) EditableText() string {
	if !u.known {
		return ""
	}
	return strconv.FormatFloat(u.value, 'g', -1, 64)
}

// MarshalJSON encodes a known value as a bare number and Unknown as the
// wire sentinel string "unknown".
func (u UnknownNumber) MarshalJSON() ([]byte, error) {
	if !u.known {
		return []byte(`"unknown"`), nil
	}
	return json.Marshal(u.value)
}

// UnmarshalJSON accepts a number, the string "unknown", a numeric string,
// or null. Anything else decodes to Unknown; the backend is not trusted to
// keep this field well-shaped.
func (u *UnknownNumber) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*u = KnownNumber(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*u = UnknownNumberFromText(s)
		return nil
	}
	*u = Unknown
	return nil
}

// GiftFunds is a boolean that may also be unknown. It stays a separate type
// from UnknownNumber; a missing yes/no answer and a missing number are
// different sentinels on the wire.
type GiftFunds struct {
	value bool
	known bool
}

// GiftFundsUnknown is the tri-state boolean sentinel.
var GiftFundsUnknown = GiftFunds{}

// KnownGiftFunds wraps a known yes/no answer.
func KnownGiftFunds(v bool) GiftFunds {
	return GiftFunds{value: v, known: true}
}

// GiftFundsFromText collapses the form literals "true"/"false" to their
// semantic values; everything else is unknown.
func GiftFundsFromText(s string) GiftFunds {
	switch strings.TrimSpace(s) {
	case "true":
		return KnownGiftFunds(true)
	case "false":
		return KnownGiftFunds(false)
	default:
		return GiftFundsUnknown
	}
}

// Bool returns the boolean value and whether it is known.
func (g GiftFunds) Bool() (bool, bool) {
	return g.value, g.known
}

// EditableText renders the tri-state for a form select.
func (g GiftFunds) EditableText() string {
	if !g.known {
		return "unknown"
	}
	return strconv.FormatBool(g.value)
}

// MarshalJSON encodes a known answer as a JSON bool and unknown as "unknown".
func (g GiftFunds) MarshalJSON() ([]byte, error) {
	if !g.known {
		return []byte(`"unknown"`), nil
	}
	return json.Marshal(g.value)
}

// UnmarshalJSON accepts a bool, "true"/"false"/"unknown", or null.
func (g *GiftFunds) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*g = KnownGiftFunds(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*g = GiftFundsFromText(s)
		return nil
	}
	*g = GiftFundsUnknown
	return nil
}
