// Package retry defines the cooldown policy applied when a provider throttles requests.
package retry

import "time"

// Default values reproduce a fixed 60s cooldown, bounded to a handful of retries.
const (
	DefaultMaxRetries  = 5
	DefaultCooldown    = 60 * time.Second
	DefaultMaxCooldown = 10 * time.Minute
	DefaultMultiplier  = 1.0
)

// Policy describes how often and how long to back off after a rate-limit notice.
type Policy struct {
	// MaxRetries bounds re-issues of one request. Zero or less retries forever.
	MaxRetries int

	// InitialCooldown is the wait before the first retry.
	InitialCooldown time.Duration

	// MaxCooldown caps the wait between retries. Zero disables the cap.
	MaxCooldown time.Duration

	// Multiplier grows the cooldown on each retry. Values below 1 are treated as 1.
	Multiplier float64
}

// NewDefaultPolicy returns the default rate-limit policy.
func NewDefaultPolicy() Policy {
	return Policy{
		MaxRetries:      DefaultMaxRetries,
		InitialCooldown: DefaultCooldown,
		MaxCooldown:     DefaultMaxCooldown,
		Multiplier:      DefaultMultiplier,
	}
}

// Unbounded reports whether the policy retries without limit.
func (p Policy) Unbounded() bool {
	return p.MaxRetries <= 0
}

// Allow reports whether retry number n (1-based) may be attempted.
func (p Policy) Allow(n int) bool {
	return p.Unbounded() || n <= p.MaxRetries
}

// Cooldown returns the wait before retry number n (1-based).
func (p Policy) Cooldown(n int) time.Duration {
	base := p.InitialCooldown
	if base <= 0 {
		base = DefaultCooldown
	}
	if n < 1 {
		n = 1
	}

	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	cooldown := float64(base)
	for i := 1; i < n; i++ {
		cooldown *= multiplier
		if p.MaxCooldown > 0 && cooldown >= float64(p.MaxCooldown) {
			return p.MaxCooldown
		}
	}

	if p.MaxCooldown > 0 && time.Duration(cooldown) > p.MaxCooldown {
		return p.MaxCooldown
	}
	return time.Duration(cooldown)
}
