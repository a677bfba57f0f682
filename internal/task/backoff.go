package task

import (
	"math"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PolynomialBackOff waits attempt^4 units plus a fixed base between
// attempts, with random jitter added on top, never exceeding Max.
type PolynomialBackOff struct {
	Unit   time.Duration
	Base   time.Duration
	Jitter float64
	Max    time.Duration

	attempt int
	rand    func() float64
}

// NewPolynomialBackOff returns the default policy: attempt^4 seconds plus two
// seconds, up to 15% jitter, capped at one hour.
func NewPolynomialBackOff() *PolynomialBackOff {
	return &PolynomialBackOff{
		Unit:   time.Second,
		Base:   2 * time.Second,
		Jitter: 0.15,
		Max:    time.Hour,
	}
}

var _ backoff.BackOff = (*PolynomialBackOff)(nil)

// NextBackOff implements backoff.BackOff.
func (b *PolynomialBackOff) NextBackOff() time.Duration {
	b.attempt++

	wait := time.Duration(math.Pow(float64(b.attempt), 4))*b.Unit + b.Base
	if b.Jitter > 0 {
		r := rand.Float64
		if b.rand != nil {
			r = b.rand
		}
		wait += time.Duration(float64(wait) * b.Jitter * r())
	}
	if b.Max > 0 && wait > b.Max {
		wait = b.Max
	}
	return wait
}

// Reset implements backoff.BackOff.
func (b *PolynomialBackOff) Reset() {
	b.attempt = 0
}
