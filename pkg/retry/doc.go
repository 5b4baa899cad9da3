/*
Package retry implements the exponential-backoff retry policy for failed
tasks.

A Policy is a pure value: it holds its parameters and computes delays with
no stored state, so one Policy can serve every task in the process. The
delay before retry attempt n (counting from 0) is

	delay(n) = min(initial_delay * base^n, max_delay)

optionally perturbed by full jitter, which draws the effective delay
uniformly from [0, delay(n)] to spread retry storms.

# Validation

Policies are validated at construction and never fail at runtime.
NewPolicy returns ErrInvalidPolicy when the exponential base is not
strictly greater than 1, when delays are negative, or when the cap is
below the initial delay.

# Usage Example

	policy, err := retry.NewPolicy(3, 2*time.Second, 60*time.Second, 2, false)
	if err != nil {
		// malformed configuration, fail fast
	}

	// Delays for attempts 0..5: 2s, 4s, 8s, 16s, 32s, 60s (capped)
	d := policy.NextDelay(task.RetryCount)

	if policy.ShouldRetry(task) {
		// requeue after d
	}

Deterministic jitter for tests:

	policy = policy.WithRand(rand.New(rand.NewSource(1)))

# See Also

  - pkg/scheduler - Applies the policy on task failure
*/
package retry
