package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecimalToCents(t *testing.T) {
	cases := map[string]int64{
		"95.50":  9550,
		"95.5":   9550,
		"95":     9500,
		"0.99":   99,
		"0.9":    90,
		"199.00": 19900,
		"0":      0,
		"-1.25":  -125,
	}
	for in, want := range cases {
		got, err := decimalToCents(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "95.505", "9 5", "95.x"} {
		_, err := decimalToCents(in)
		assert.Error(t, err, in)
	}
}

func TestCentsToDecimal(t *testing.T) {
	assert.Equal(t, "95.50", centsToDecimal(9550))
	assert.Equal(t, "95.05", centsToDecimal(9505))
	assert.Equal(t, "0.99", centsToDecimal(99))
	assert.Equal(t, "200.00", centsToDecimal(20000))
}
