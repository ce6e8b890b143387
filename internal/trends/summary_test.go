package trends

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, Rising, Classify(0.06))
	assert.Equal(t, Falling, Classify(-0.06))
	assert.Equal(t, Stable, Classify(0.05))
	assert.Equal(t, Stable, Classify(-0.05))
	assert.Equal(t, Stable, Classify(0))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "+12.3%", FormatRate(0.123))
	assert.Equal(t, "-50.0%", FormatRate(-0.5))
	assert.Equal(t, "0.0%", FormatRate(0))
	assert.Equal(t, "0.0%", FormatRate(-0.0001))
}

func TestFavourable(t *testing.T) {
	assert.True(t, Favourable(Falling, true))
	assert.False(t, Favourable(Rising, true))
	assert.True(t, Favourable(Rising, false))
	assert.False(t, Favourable(Stable, false))
}
