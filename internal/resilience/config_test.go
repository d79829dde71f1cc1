package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/exec-enrich/internal/config"
)

func TestRetryFromConfig(t *testing.T) {
	t.Parallel()

	cfg := RetryFromConfig(config.RetryConfig{MaxAttempts: 4, InitialBackoffMs: 250, MaxBackoffMs: 2000})
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.MaxBackoff)

	def := RetryFromConfig(config.RetryConfig{})
	assert.Equal(t, DefaultRetryConfig().MaxAttempts, def.MaxAttempts)
}

func TestBreakerFromConfig(t *testing.T) {
	t.Parallel()

	cfg := BreakerFromConfig(config.BreakerConfig{FailureThreshold: 2, ResetTimeoutSecs: 10})
	assert.Equal(t, 2, cfg.FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.ResetTimeout)
	assert.False(t, cfg.ShouldTrip(&HTTPError{StatusCode: 404}))
	assert.True(t, cfg.ShouldTrip(&HTTPError{StatusCode: 500}))
}
