package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy_FixedCooldown(t *testing.T) {
	p := NewDefaultPolicy()

	for n := 1; n <= p.MaxRetries; n++ {
		assert.Equal(t, 60*time.Second, p.Cooldown(n), "retry %d", n)
		assert.True(t, p.Allow(n))
	}
	assert.False(t, p.Allow(p.MaxRetries+1))
}

func TestPolicy_ExponentialBackoffIsCapped(t *testing.T) {
	p := Policy{
		MaxRetries:      10,
		InitialCooldown: time.Minute,
		MaxCooldown:     5 * time.Minute,
		Multiplier:      2,
	}

	assert.Equal(t, 1*time.Minute, p.Cooldown(1))
	assert.Equal(t, 2*time.Minute, p.Cooldown(2))
	assert.Equal(t, 4*time.Minute, p.Cooldown(3))
	assert.Equal(t, 5*time.Minute, p.Cooldown(4))
	assert.Equal(t, 5*time.Minute, p.Cooldown(10))
}

func TestPolicy_UnboundedAlwaysAllows(t *testing.T) {
	p := Policy{MaxRetries: 0, InitialCooldown: time.Minute}

	assert.True(t, p.Unbounded())
	assert.True(t, p.Allow(1))
	assert.True(t, p.Allow(100000))
}

func TestPolicy_SanitisesBadValues(t *testing.T) {
	p := Policy{MaxRetries: 3, Multiplier: 0.5}

	assert.Equal(t, DefaultCooldown, p.Cooldown(0))
	assert.Equal(t, DefaultCooldown, p.Cooldown(3))
}
