package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
)

func TestParse(t *testing.T) {
	a, err := Parse("10.50")
	require.NoError(t, err)
	assert.Equal(t, "10.50", a.String())

	a, err = Parse("100")
	require.NoError(t, err)
	assert.Equal(t, "100.00", a.String())

	a, err = Parse("0.1")
	require.NoError(t, err)
	assert.Equal(t, "0.10", a.String())

	a, err = Parse("-3.25")
	require.NoError(t, err)
	assert.True(t, a.IsNegative())
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "abc", "10.5.1", "1,000.00"} {
		_, err := Parse(s)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidAmount), "input %q", s)
	}
}

func TestParseRejectsExcessPrecision(t *testing.T) {
	for _, s := range []string{"10.001", "0.999", "1.23456"} {
		_, err := Parse(s)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidAmount), "input %q", s)
	}
}

func TestArithmeticIsExact(t *testing.T) {
	// The classic binary float trap: 0.10 + 0.20 must be exactly 0.30.
	sum := MustParse("0.10").Add(MustParse("0.20"))
	assert.Equal(t, "0.30", sum.String())
	assert.True(t, sum.Equal(MustParse("0.30")))

	diff := MustParse("1.00").Sub(MustParse("0.42"))
	assert.Equal(t, "0.58", diff.String())

	assert.Equal(t, "-5.00", MustParse("5.00").Neg().String())
	assert.True(t, MustParse("5.00").Sub(MustParse("5.00")).IsZero())
}

func TestCmp(t *testing.T) {
	assert.Equal(t, -1, MustParse("1.00").Cmp(MustParse("2.00")))
	assert.Equal(t, 0, MustParse("2.00").Cmp(MustParse("2")))
	assert.Equal(t, 1, MustParse("2.01").Cmp(MustParse("2.00")))
}

func TestJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(MustParse("42.05"))
	require.NoError(t, err)
	assert.Equal(t, `"42.05"`, string(raw))

	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"19.99"`), &a))
	assert.Equal(t, "19.99", a.String())

	// Bare numbers are tolerated on input.
	require.NoError(t, json.Unmarshal([]byte(`7`), &a))
	assert.Equal(t, "7.00", a.String())

	err = json.Unmarshal([]byte(`"1.999"`), &a)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidAmount))
}

func TestZeroValue(t *testing.T) {
	var a Amount
	assert.True(t, a.IsZero())
	assert.Equal(t, "0.00", a.String())
	assert.True(t, a.Equal(Zero()))
}
