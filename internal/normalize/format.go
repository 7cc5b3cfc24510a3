package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numericPrefix matches the leading number of a value, the way a lenient
// float parse reads "12.5 USD" as 12.5.
var numericPrefix = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?`)

// intPrefix matches the leading integer of a value, so "200+" reads as 200.
var intPrefix = regexp.MustCompile(`^[-+]?\d+`)

// FormatPrice renders a raw price with exactly two decimals. Empty or
// non-numeric input yields "".
func FormatPrice(raw string) string {
	match := numericPrefix.FindString(strings.TrimSpace(raw))
	if match == "" {
		return ""
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(match, "."))
	if err != nil {
		return ""
	}
	return d.StringFixed(2)
}

// ParseQuantity reads the leading integer of a stock value. A trailing
// suffix such as the "+" of "200+" is ignored; anything non-numeric is 0.
func ParseQuantity(raw string) int {
	n, ok := leadingInt(raw)
	if !ok {
		return 0
	}
	return n
}

func leadingInt(raw string) (int, bool) {
	match := intPrefix.FindString(strings.TrimSpace(raw))
	if match == "" {
		return 0, false
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
