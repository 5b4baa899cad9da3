package retry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// ErrInvalidPolicy is returned by NewPolicy for malformed parameters.
// Policies fail at construction, never at runtime.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy computes backoff delays and retry eligibility. It is pure and
// stateless; the same Policy value may be shared across goroutines.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Base         float64
	Jitter       bool

	// rand is the jitter source; injectable for deterministic tests.
	// nil falls back to the global source.
	rand *rand.Rand
}

// DefaultPolicy returns the stock policy: 3 retries, 2s initial delay
// doubling up to 60s, with full jitter.
func DefaultPolicy() Policy {
	p, _ := NewPolicy(types.DefaultMaxRetries, 2*time.Second, 60*time.Second, 2, true)
	return p
}

// NewPolicy validates and constructs a Policy. The exponential base must
// be strictly greater than 1.
func NewPolicy(maxRetries int, initialDelay, maxDelay time.Duration, base float64, jitter bool) (Policy, error) {
	if maxRetries < 0 {
		return Policy{}, fmt.Errorf("%w: max retries must not be negative: %d", ErrInvalidPolicy, maxRetries)
	}
	if initialDelay < 0 {
		return Policy{}, fmt.Errorf("%w: initial delay must not be negative: %s", ErrInvalidPolicy, initialDelay)
	}
	if maxDelay < initialDelay {
		return Policy{}, fmt.Errorf("%w: max delay %s is below initial delay %s", ErrInvalidPolicy, maxDelay, initialDelay)
	}
	if base <= 1 {
		return Policy{}, fmt.Errorf("%w: exponential base must be greater than 1: %g", ErrInvalidPolicy, base)
	}
	return Policy{
		MaxRetries:   maxRetries,
		InitialDelay: initialDelay,
		MaxDelay:     maxDelay,
		Base:         base,
		Jitter:       jitter,
	}, nil
}

// WithRand returns a copy of p drawing jitter from r.
func (p Policy) WithRand(r *rand.Rand) Policy {
	p.rand = r
	return p
}

// ShouldRetry reports whether the task has retry budget left. The
// task's own MaxRetries governs; the policy default is applied to it at
// submission time, not here.
func (p Policy) ShouldRetry(task *types.Task) bool {
	return task.RetryCount < task.MaxRetries
}

// NextDelay returns the backoff delay before retry attempt n, where n is
// the retry count before this attempt. Without jitter the delay is
// exactly min(initial * base^n, max); with jitter it is drawn uniformly
// from [0, that value] (full jitter).
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	base := float64(p.InitialDelay) * math.Pow(p.Base, float64(attempt))
	capped := float64(p.MaxDelay)
	if base > capped {
		base = capped
	}

	if !p.Jitter {
		return time.Duration(base)
	}
	return time.Duration(p.float64n() * base)
}

func (p Policy) float64n() float64 {
	if p.rand != nil {
		return p.rand.Float64()
	}
	return rand.Float64()
}
