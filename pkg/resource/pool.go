package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cuemby/burrow/pkg/types"
)

var (
	// ErrInsufficientResources means Reserve was called for a requirement
	// that does not fit current availability. Reserving without a prior
	// admission check is a programming error; callers must treat this as
	// fatal, not retry it.
	ErrInsufficientResources = errors.New("insufficient resources")

	// ErrAccountingError means Release would drive a used component below
	// zero, i.e. a release without a matching reserve.
	ErrAccountingError = errors.New("resource accounting error")
)

// Pool tracks total and used capacity across CPU, memory and GPU.
// Available capacity is always derived as total - used, never stored,
// so the two can not drift apart.
type Pool struct {
	mu    sync.Mutex
	total types.Resources
	used  types.Resources
}

// Snapshot is a point-in-time view of pool capacity for display.
type Snapshot struct {
	Total     types.Resources
	Used      types.Resources
	Available types.Resources
}

// NewPool creates a pool with the given total capacity.
func NewPool(total types.Resources) (*Pool, error) {
	if !total.NonNegative() {
		return nil, fmt.Errorf("pool capacity must not be negative: %s", total)
	}
	return &Pool{total: total}, nil
}

// CanAdmit reports whether req fits within currently available capacity.
// All three dimensions are checked independently; there is no
// proportional fallback and no partial admission.
func (p *Pool) CanAdmit(req types.Resources) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return req.Fits(p.total.Sub(p.used))
}

// Reserve atomically claims req. It re-checks admission under the lock,
// so two concurrent reservations can never jointly exceed total.
func (p *Pool) Reserve(req types.Resources) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !req.Fits(p.total.Sub(p.used)) {
		return fmt.Errorf("%w: need %s, available %s",
			ErrInsufficientResources, req, p.total.Sub(p.used))
	}
	p.used = p.used.Add(req)
	return nil
}

// Release returns req to the pool. A release that would make any used
// component negative signals a reserve/release mismatch and fails
// without changing state.
func (p *Pool) Release(req types.Resources) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.used.Sub(req)
	if !next.NonNegative() {
		return fmt.Errorf("%w: releasing %s with only %s in use",
			ErrAccountingError, req, p.used)
	}
	p.used = next
	return nil
}

// Snapshot returns the current totals for display. Available is derived
// at read time.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Total:     p.total,
		Used:      p.used,
		Available: p.total.Sub(p.used),
	}
}

// Total returns the configured capacity.
func (p *Pool) Total() types.Resources {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}
