package pattern

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SlotKinds(t *testing.T) {
	p, err := Parse("a9-Z_")
	require.NoError(t, err)

	slots := p.Slots()
	require.Len(t, slots, 5)

	assert.Equal(t, Letter, slots[0].Kind)
	assert.Equal(t, Digit, slots[1].Kind)
	assert.Equal(t, Fixed, slots[2].Kind) // '-'
	assert.Equal(t, Fixed, slots[3].Kind) // uppercase is fixed
	assert.Equal(t, Fixed, slots[4].Kind)

	assert.Equal(t, []int{0, 1}, p.VariableSlots())
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmptyTemplate)
}

func TestCombinations(t *testing.T) {
	cases := []struct {
		template string
		want     string
	}{
		{"a9", "260"},            // 26 * 10
		{"99", "100"},            // 10 * 10
		{"XY-", "1"},             // no variable slots
		{"ab", "676"},            // 26 * 26
		{"aaaa999999", "456976000000"}, // 26^4 * 10^6
	}
	for _, tc := range cases {
		p, err := Parse(tc.template)
		require.NoError(t, err)

		want, ok := new(big.Int).SetString(tc.want, 10)
		require.True(t, ok)
		assert.Zero(t, p.Combinations().Cmp(want), "template %q", tc.template)
	}
}

func TestCombinations_FullLengthTemplate(t *testing.T) {
	// A 32-char hex-like template: 19 digit slots and 13 letter slots. The
	// exact count is 10^19 * 26^13, far beyond int64.
	p, err := Parse("881a0eb9570ae493b60b39e71eeaa03a")
	require.NoError(t, err)
	require.Equal(t, 32, p.VariableCount())

	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(19), nil)
	want.Mul(want, new(big.Int).Exp(big.NewInt(26), big.NewInt(13), nil))
	assert.Zero(t, p.Combinations().Cmp(want))
}

func TestCombinations_Recomputable(t *testing.T) {
	p, err := Parse("a9")
	require.NoError(t, err)
	first := p.Combinations()
	first.SetInt64(0) // mutate the returned value
	assert.Equal(t, int64(260), p.Combinations().Int64())
}
