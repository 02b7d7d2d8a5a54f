package facts

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizeValue converts one raw fact encoding into a float. Three encodings
// are recognized: a plain number, a {value|val, decimals} scaled pair meaning
// base x 10^decimals, and a string that may carry thousands separators, a
// currency symbol, or parentheses denoting a negative amount. Anything else,
// including a parse failure, degrades to nil. It never returns an error.
func NormalizeValue(n *Node) *float64 {
	if n == nil {
		return nil
	}

	switch n.Kind() {
	case KindScalar:
		return normalizeScalar(n.Scalar())
	case KindMapping:
		base, ok := n.Field("value")
		if !ok {
			base, ok = n.Field("val")
		}
		if !ok {
			return nil
		}
		v := normalizeScalar(base.Scalar())
		if v == nil {
			return nil
		}
		exp := 0
		if dec, ok := n.Field("decimals"); ok {
			e := normalizeScalar(dec.Scalar())
			if e == nil {
				return nil
			}
			exp = int(*e)
		}
		scaled := *v * math.Pow10(exp)
		return &scaled
	default:
		return nil
	}
}

func normalizeScalar(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case float32:
		f := float64(t)
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		return parseNumericString(t)
	default:
		return nil
	}
}

// parseNumericString strips the formatting that shows up in filing values:
// "1,234", "$5.0", "(1,234)" for -1234.
func parseNumericString(s string) *float64 {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, "(", "-")
	clean = strings.ReplaceAll(clean, ")", "")
	if clean == "" {
		return nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	return &f
}
