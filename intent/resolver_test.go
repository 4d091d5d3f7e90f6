package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testMappings() map[string]string {
	return map[string]string{
		"checking":    "1234567890",
		"chequing":    "1234567890",
		"saving":      "2345678901",
		"savings":     "2345678901",
		"credit":      "3456789012",
		"credit card": "3456789012",
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(testMappings())

	number, ok := r.Resolve("my savings account")
	assert.True(t, ok)
	assert.Equal(t, "2345678901", number)

	number, ok = r.Resolve("Chequing")
	assert.True(t, ok)
	assert.Equal(t, "1234567890", number)

	_, ok = r.Resolve("my offshore fund")
	assert.False(t, ok)
}

func TestResolveLongestKeyWins(t *testing.T) {
	// "savings" contains "saving"; the longer key must win regardless of map
	// order. Check with keys mapping to distinct values.
	r2 := NewResolver(map[string]string{
		"card":        "1111111111",
		"credit card": "3456789012",
	})
	number, ok := r2.Resolve("pay my credit card bill")
	assert.True(t, ok)
	assert.Equal(t, "3456789012", number)

	// Equal-length keys break the tie on earliest occurrence.
	r3 := NewResolver(map[string]string{
		"aaaa": "first",
		"bbbb": "second",
	})
	for i := 0; i < 20; i++ {
		number, ok = r3.Resolve("bbbb then aaaa")
		assert.True(t, ok)
		assert.Equal(t, "second", number)
	}
}

func TestInferAccountNumber(t *testing.T) {
	assert.Equal(t, "2345678901", InferAccountNumber("move it from my savings"))
	assert.Equal(t, "1234567890", InferAccountNumber("what's in chequing?"))
	assert.Equal(t, "3456789012", InferAccountNumber("my credit balance"))
	assert.Equal(t, "", InferAccountNumber("hello there"))

	// Savings wins over checking when both appear.
	assert.Equal(t, "2345678901", InferAccountNumber("from savings to checking"))
}
