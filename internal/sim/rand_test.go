package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRandDeterministic(t *testing.T) {
	a := NewRand(1234)
	b := NewRand(1234)

	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestRandDiffersBySeed(t *testing.T) {
	a := NewRand(1)
	b := NewRand(2)

	same := 0
	for i := 0; i < 64; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}

	assert.Less(t, same, 64)
}

func TestRandFloatRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint32().Draw(t, "seed")
		r := NewRand(seed)

		for i := 0; i < 32; i++ {
			f := r.NextFloat()
			assert.GreaterOrEqual(t, f, float32(0))
			assert.LessOrEqual(t, f, float32(1))
		}
	})
}
