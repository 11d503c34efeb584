package generate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponprobe/internal/domain"
	"couponprobe/internal/pattern"
)

func newVisited(t *testing.T) *VisitedStore {
	t.Helper()
	s, err := OpenVisited(filepath.Join(t.TempDir(), "visited.txt"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRandom_NeverRepeats(t *testing.T) {
	p := mustPattern(t, "99") // 100 combinations
	g, err := NewRandom([]*pattern.Pattern{p}, newVisited(t))
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		c, err := g.Next()
		require.NoError(t, err)
		_, dup := seen[c]
		require.False(t, dup, "duplicate candidate %q", c)
		seen[c] = struct{}{}
		require.Len(t, c, 2)
	}

	// The space is fully drawn; the only possible outcome now is the
	// probabilistic exhaustion signal.
	_, err = g.Next()
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
}

func TestRandom_MatchesSlotStructure(t *testing.T) {
	p := mustPattern(t, "X9a-")
	g, err := NewRandom([]*pattern.Pattern{p}, newVisited(t))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		c, err := g.Next()
		require.NoError(t, err)
		require.Len(t, c, 4)
		assert.Equal(t, byte('X'), c[0])
		assert.Equal(t, byte('-'), c[3])
		assert.True(t, c[1] >= '0' && c[1] <= '9', "digit slot got %q", c[1])
		assert.True(t, c[2] >= 'a' && c[2] <= 'z', "letter slot got %q", c[2])
	}
}

func TestRandom_MultiPattern(t *testing.T) {
	pa := mustPattern(t, "A9")
	pb := mustPattern(t, "B9")
	g, err := NewRandom([]*pattern.Pattern{pa, pb}, newVisited(t))
	require.NoError(t, err)

	// 20 combinations total across both templates; every draw must match one
	// of the two slot structures.
	for i := 0; i < 20; i++ {
		c, err := g.Next()
		require.NoError(t, err)
		assert.Contains(t, []byte{'A', 'B'}, c[0])
	}
	_, err = g.Next()
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
}

func TestRandom_ResumesAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "visited.txt")
	p := mustPattern(t, "9")

	s, err := OpenVisited(path)
	require.NoError(t, err)
	g, err := NewRandom([]*pattern.Pattern{p}, s)
	require.NoError(t, err)

	first := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		c, err := g.Next()
		require.NoError(t, err)
		first[c] = struct{}{}
	}
	require.NoError(t, s.Close())

	s2, err := OpenVisited(path)
	require.NoError(t, err)
	defer s2.Close()
	g2, err := NewRandom([]*pattern.Pattern{p}, s2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		c, err := g2.Next()
		require.NoError(t, err)
		_, dup := first[c]
		assert.False(t, dup, "candidate %q repeated after restart", c)
	}
}

func TestRandom_NoPatterns(t *testing.T) {
	_, err := NewRandom(nil, newVisited(t))
	assert.ErrorIs(t, err, ErrNoPatterns)
}
