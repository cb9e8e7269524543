package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHash(t *testing.T) {
	h := NewHash([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h.String())
	assert.Equal(t, "ba7816bf8f01", h.Short())
	assert.False(t, h.IsEmpty())
	assert.True(t, Hash("").IsEmpty())
}

func TestComputeTableHash(t *testing.T) {
	headers := []string{"a", "b"}
	base := ComputeTableHash(headers, [][]any{{"1", "2"}, {"3", nil}})

	assert.Equal(t, base, ComputeTableHash(headers, [][]any{{"1", "2"}, {"3", nil}}))
	assert.NotEqual(t, base, ComputeTableHash(headers, [][]any{{"12", ""}, {"3", nil}}))
	assert.NotEqual(t, base, ComputeTableHash(headers, [][]any{{"1", "2", "3"}}))
	assert.NotEqual(t, base, ComputeTableHash([]string{"b", "a"}, [][]any{{"1", "2"}, {"3", nil}}))
}
