/*
Package resource implements capacity accounting for the scheduler.

A Pool tracks total and used capacity in three independent dimensions
(CPU cores, memory MB, GPU units) and answers admission-fit queries.
Available capacity is always derived as total - used at read time, never
stored, so the figures can not drift apart.

# Admission Model

A task is admissible when its requirement fits availability in every
dimension simultaneously. There is no weighted scoring and no partial
admission: a task either gets its full declared requirement or nothing.

	pool, _ := resource.NewPool(types.Resources{CPUCores: 16, MemoryMB: 65536, GPUCount: 2})

	if pool.CanAdmit(task.Resources) {
		if err := pool.Reserve(task.Resources); err != nil {
			// lost a race; ErrInsufficientResources
		}
	}

Reserve re-checks fit under its own lock, so the CanAdmit/Reserve pair
above is safe against concurrent reservations: two schedulers can never
jointly exceed total.

# Error Contract

  - ErrInsufficientResources: Reserve called for a requirement that does
    not fit. Under a correct scheduler this only happens on a lost race
    inside the scheduler's own critical section; anywhere else it is a
    programming error and must propagate.
  - ErrAccountingError: Release without a matching reserve. Always a bug;
    the pool refuses the release and keeps its state.

Both invariants hold at all times: used <= total component-wise, and no
used component is ever negative.

# Host Detection

Detect() probes the host with gopsutil for CPU core count and physical
memory, for deployments that configure capacity as "auto". GPUs are never
auto-detected and default to zero.
*/
package resource
