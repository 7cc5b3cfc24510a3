package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalWarehousePolicy_Quantity(t *testing.T) {
	policy := ExternalWarehousePolicy{LocationCode: "EXT"}

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "base plus suffixed external stock",
			raw:      `{"product": {"qty": "150"}, "stocks": [{"locationCode": "EXT", "stock": "60+"}]}`,
			expected: "210",
		},
		{
			name:     "zero base and no external entry",
			raw:      `{"product": {"qty": "0"}}`,
			expected: "0",
		},
		{
			name:     "other locations ignored",
			raw:      `{"product": {"qty": 5}, "stocks": [{"locationCode": "MAIN", "stock": "100"}]}`,
			expected: "5",
		},
		{
			name:     "non-numeric base counts as zero",
			raw:      `{"product": {"qty": "n/a"}, "stocks": [{"locationCode": "EXT", "stock": "12"}]}`,
			expected: "12",
		},
		{
			name:     "non-numeric external counts as zero",
			raw:      `{"product": {"qty": "3"}, "stocks": [{"locationCode": "EXT", "stock": "lots+"}]}`,
			expected: "3",
		},
		{
			name:     "trailing text on both values",
			raw:      `{"product": {"qty": "12abc"}, "stocks": [{"locationCode": "EXT", "stock": "12abc"}]}`,
			expected: "24",
		},
		{
			name:     "decimal values truncate",
			raw:      `{"product": {"qty": "1.5"}, "stocks": [{"locationCode": "EXT", "stock": "60.0"}]}`,
			expected: "61",
		},
		{
			name:     "numeric external stock",
			raw:      `{"product": {"qty": "1"}, "stocks": [{"locationCode": "EXT", "stock": 9}]}`,
			expected: "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Quantity(decodeItem(t, tt.raw)))
		})
	}
}

func TestCapPolicy_Quantity(t *testing.T) {
	policy := CapPolicy{Threshold: 200}

	tests := []struct {
		raw      string
		expected string
	}{
		{raw: `{"product": {"qty": "15"}}`, expected: "15"},
		{raw: `{"product": {"qty": "199"}}`, expected: "199"},
		{raw: `{"product": {"qty": "200"}}`, expected: "200+"},
		{raw: `{"product": {"qty": 1500}}`, expected: "200+"},
		{raw: `{"product": {"qty": "250+"}}`, expected: "200+"},
		{raw: `{"product": {}}`, expected: "0"},
		{raw: `{"product": {"qty": "n/a"}}`, expected: "n/a"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, policy.Quantity(decodeItem(t, tt.raw)), tt.raw)
	}
}

func TestNewStockPolicy(t *testing.T) {
	p, err := NewStockPolicy(PolicyCap, 0, "")
	require.NoError(t, err)
	assert.Equal(t, CapPolicy{Threshold: DefaultStockCap}, p)
	assert.Equal(t, PolicyCap, p.Name())

	p, err = NewStockPolicy(PolicyExternal, 0, "EXT")
	require.NoError(t, err)
	assert.Equal(t, ExternalWarehousePolicy{LocationCode: "EXT"}, p)
	assert.Equal(t, PolicyExternal, p.Name())

	_, err = NewStockPolicy("sum", 0, "")
	assert.Error(t, err)
}

func TestFormatPrice(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"abc":       "",
		"3963":      "3963.00",
		"3963.5":    "3963.50",
		"12.345":    "12.35",
		" 7 ":       "7.00",
		"5.":        "5.00",
		".5":        "0.50",
		"19.99 USD": "19.99",
		"-4.1":      "-4.10",
		"1e2":       "100.00",
	}

	for in, expected := range tests {
		assert.Equal(t, expected, FormatPrice(in), "input %q", in)
	}
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 200, ParseQuantity("200+"))
	assert.Equal(t, 42, ParseQuantity(" 42 "))
	assert.Equal(t, 0, ParseQuantity(""))
	assert.Equal(t, 0, ParseQuantity("+"))
	assert.Equal(t, 0, ParseQuantity("x12"))
	assert.Equal(t, 12, ParseQuantity("12abc"))
	assert.Equal(t, 60, ParseQuantity("60.0"))
}
