package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var runIDRe = regexp.MustCompile(`^run-\d{8}-[0-9a-f]{16}$`)

func TestNewRunID(t *testing.T) {
	a := NewRunID()
	b := NewRunID()

	assert.Regexp(t, runIDRe, a)
	assert.Regexp(t, runIDRe, b)
	assert.NotEqual(t, a, b)
}
