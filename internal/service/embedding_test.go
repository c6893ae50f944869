package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEmbedding(t *testing.T) {
	a := GenerateEmbedding("pancakes")
	b := GenerateEmbedding("pancakes")
	assert.Equal(t, a, b, "embedding must be deterministic")

	c := GenerateEmbedding("a completely different recipe text")
	assert.NotEqual(t, a, c)

	assert.Len(t, a.Slice(), 3)
}
