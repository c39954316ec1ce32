package coerce

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("true"))

	assert.False(t, ToBool(false))
	assert.False(t, ToBool("yes"))
	assert.False(t, ToBool("TRUE"))
	assert.False(t, ToBool("1"))
	assert.False(t, ToBool(1))
	assert.False(t, ToBool(nil))
	assert.False(t, ToBool(map[string]any{"advanced": true}))

	yes := true
	assert.True(t, ToBool(&yes))
	var missing *bool
	assert.False(t, ToBool(missing))
}

func TestToNum(t *testing.T) {
	assert.Equal(t, 1.0, ToNum("abc", 1))
	assert.Equal(t, 3.0, ToNum("3", 1))
	assert.Equal(t, 3.0, ToNum(" 3 ", 1))
	assert.Equal(t, 2.5, ToNum(2.5, 1))
	assert.Equal(t, 7.0, ToNum(7, 1))
	assert.Equal(t, 12.0, ToNum(json.Number("12"), 1))

	assert.Equal(t, 1.0, ToNum(nil, 1))
	assert.Equal(t, 1.0, ToNum("", 1))
	assert.Equal(t, 1.0, ToNum("   ", 1))
	assert.Equal(t, 5.0, ToNum([]any{1, 2}, 5))
	assert.Equal(t, 1.0, ToNum("NaN", 1))
	assert.Equal(t, 1.0, ToNum("+Inf", 1))
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 4, ToInt("4.7", 1))
	assert.Equal(t, 42, ToInt(float64(42), 1))
	assert.Equal(t, 1, ToInt("page-two", 1))
	assert.Equal(t, 9, ToInt(nil, 9))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "dragon", ToString("dragon"))
	assert.Equal(t, "3", ToString(3))
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "", ToString(map[string]any{"q": "x"}))
	assert.Equal(t, "", ToString([]any{"x"}))
}
