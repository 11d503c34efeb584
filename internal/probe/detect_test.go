package probe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccess_TwoIndicators(t *testing.T) {
	content := `<html><body>
		<div>Use Coupon Code given below</div>
		<button>Copy Code</button>
	</body></html>`
	assert.True(t, Success(content, DefaultIndicators))
}

func TestSuccess_OneIndicatorIsNotEnough(t *testing.T) {
	content := `<html><body><button>Copy Code</button></body></html>`
	assert.False(t, Success(content, DefaultIndicators))
}

func TestSuccess_CaseInsensitive(t *testing.T) {
	content := `USE COUPON CODE GIVEN BELOW ... copy code`
	assert.True(t, Success(content, DefaultIndicators))
}

func TestSuccess_Deterministic(t *testing.T) {
	content := `Flat Rs. 100 Off — Start shopping today`
	for i := 0; i < 5; i++ {
		assert.True(t, Success(content, DefaultIndicators))
	}
}

func TestSuccess_EmptyInputs(t *testing.T) {
	assert.False(t, Success("", DefaultIndicators))
	assert.False(t, Success("Copy Code and Flat Rs. 100 Off", nil))
}

func TestExtractCode(t *testing.T) {
	content := `<div>Use Coupon Code given below</div>
		<span>save100now</span><button>Copy Code</button>`
	assert.Equal(t, "SAVE100NOW", ExtractCode(content))
}

func TestExtractCode_NoMarker(t *testing.T) {
	assert.Equal(t, "", ExtractCode("nothing interesting here"))
}

func TestExtractCode_NoPlausibleToken(t *testing.T) {
	assert.Equal(t, "", ExtractCode("ab Copy Code cd"))
}

func TestExtractCode_MultiByteContent(t *testing.T) {
	// U+023A lowercases to U+2C65 and grows from 2 bytes to 3, so marker
	// offsets found in the lowered text do not line up with the original.
	padding := strings.Repeat("Ⱥ", 500)

	assert.NotPanics(t, func() {
		ExtractCode(padding + " Copy Code")
	})
	assert.Equal(t, "SAVE100NOW", ExtractCode(padding+" save100now Copy Code"))
}
