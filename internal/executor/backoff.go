package executor

import (
	"math"
	"math/rand"
	"time"
)

// computeBackoff mirrors the teacher's graph/policy.go formula,
// `min(base * 2^attempt, maxDelay)`, ported to float seconds. attempt is
// 1-based (the first retry is attempt 1), so delay = base *
// exp_base^(attempt-1), capped at maxDelay — attempt 1 reduces to exactly
// base_delay_s (§8 Testable Properties: "Retry delay for attempt 1 equals
// base_delay_s"). The spec's worked examples are jitter-free, so jitter
// defaults off; RetryPolicy.Jitter opts into the teacher's jitter(0, base)
// addition for production use.
func computeBackoff(attempt int, policy RetryPolicy) time.Duration {
	delay := policy.BaseDelayS * math.Pow(policy.ExponentialBase, float64(attempt-1))
	if delay > policy.MaxDelayS {
		delay = policy.MaxDelayS
	}

	if policy.Jitter {
		// rand.Float64 uses the package-level, mutex-guarded source, so
		// this stays safe under the scheduler's concurrent task goroutines.
		delay += rand.Float64() * policy.BaseDelayS
	}

	return secondsToDuration(delay)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
