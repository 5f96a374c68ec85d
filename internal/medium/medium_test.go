package medium

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaddIdentityWithVeryWeakSignal(t *testing.T) {
	sum := padd(-40, -200)
	assert.InDelta(t, -40, sum, 0.1)
}

func TestPaddPsubRoundTrip(t *testing.T) {
	sum := padd(-50, -55)
	back := psub(sum, -55)
	assert.InDelta(t, -50, back, 0.1)
}

func TestPathLossIncreasesWithDistance(t *testing.T) {
	near := pathLoss(1, 2.4e9)
	far := pathLoss(100, 2.4e9)
	assert.Greater(t, far, near)
}
