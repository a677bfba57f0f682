package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolynomialBackOff(t *testing.T) {
	b := NewPolynomialBackOff()
	b.Jitter = 0

	// attempt^4 seconds plus two
	assert.Equal(t, 3*time.Second, b.NextBackOff())
	assert.Equal(t, 18*time.Second, b.NextBackOff())
	assert.Equal(t, 83*time.Second, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 3*time.Second, b.NextBackOff())
}

func TestPolynomialBackOffJitter(t *testing.T) {
	b := NewPolynomialBackOff()
	b.rand = func() float64 { return 1 }

	// 3s plus the full 15% jitter
	assert.Equal(t, 3450*time.Millisecond, b.NextBackOff())
}

func TestPolynomialBackOffCap(t *testing.T) {
	b := NewPolynomialBackOff()
	b.Jitter = 0
	b.Max = 10 * time.Second

	assert.Equal(t, 3*time.Second, b.NextBackOff())
	assert.Equal(t, 10*time.Second, b.NextBackOff())
}
