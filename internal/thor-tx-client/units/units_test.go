package units

import (
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

func TestToWire(t *testing.T) {
	tests := []struct {
		in   DisplayAmount
		want WireAmount
	}{
		{"0", "0"},
		{"1", "100000000"},
		{"0.0001", "10000"},
		{"0.00000001", "1"},
		{"12.5", "1250000000"},
		{" 3.14159265 ", "314159265"},
		{"0.000000019", "1"},
		{"0.999999999", "99999999"},
		{"1e-4", "10000"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := ToWire(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToWireRejectsInvalid(t *testing.T) {
	for _, in := range []DisplayAmount{"", "abc", "-1", "-0.5", "NaN", "Inf", "1.2.3", "184467440737.09551616"} {
		t.Run(string(in), func(t *testing.T) {
			_, err := ToWire(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, txerr.ErrInvalidAmount))
		})
	}
}

func TestToDisplay(t *testing.T) {
	tests := []struct {
		in   WireAmount
		want DisplayAmount
	}{
		{"0", "0"},
		{"1", "0.00000001"},
		{"10000", "0.0001"},
		{"100000000", "1"},
		{"1250000000", "12.5"},
		{"99999999", "0.99999999"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := ToDisplay(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []WireAmount{"", "-5", "1.5", "x"} {
		_, err := ToDisplay(in)
		assert.True(t, errors.Is(err, txerr.ErrInvalidAmount), "input %q", in)
	}
}

func TestDisplayRoundTrip(t *testing.T) {
	for _, d := range []DisplayAmount{"0", "1", "0.1", "0.0001", "0.00000001", "123.45678901", "1000000", "42.5"} {
		w, err := ToWire(d)
		require.NoError(t, err)
		back, err := ToDisplay(w)
		require.NoError(t, err)
		assert.Equal(t, d, back)
	}
}

func TestWireRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 7, 99999999, 100000000, 123456789012, 5000000000000000} {
		w := WireAmount(strconv.FormatUint(n, 10))
		d, err := ToDisplay(w)
		require.NoError(t, err)
		back, err := ToWire(d)
		require.NoError(t, err)
		assert.Equal(t, w, back)
	}
}

func TestIsDust(t *testing.T) {
	almostOne, err := ToDisplay("99999999")
	require.NoError(t, err)
	dust, err := IsDust(almostOne)
	require.NoError(t, err)
	assert.False(t, dust)

	zero, err := ToDisplay("0")
	require.NoError(t, err)
	dust, err = IsDust(zero)
	require.NoError(t, err)
	assert.True(t, dust)

	dust, err = IsDust("0.000000009")
	require.NoError(t, err)
	assert.True(t, dust)

	_, err = IsDust("bad")
	assert.True(t, errors.Is(err, txerr.ErrInvalidAmount))
}
