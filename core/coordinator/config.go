package coordinator

import "time"

// NoRetries disables retrying when set as Policy.RetryAttempts. The zero
// value takes the default instead.
const NoRetries = -1

// Defaults applied by Policy.withDefaults.
const (
	DefaultTTL            = 30 * time.Second
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = time.Second
)

// Policy controls one Execute call: freshness window, retry behavior and
// cache bypass.
type Policy struct {
	// TTL is the freshness window for the cached payload. Zero takes the
	// default.
	TTL time.Duration
	// RetryAttempts is the number of retries after the initial attempt.
	// Zero takes the default; NoRetries disables retrying.
	RetryAttempts int
	// RetryBaseDelay is the first backoff delay; each retry doubles it.
	// Zero takes the default.
	RetryBaseDelay time.Duration
	// SkipCache bypasses the cache for both the read and the write. The
	// existing entry is left in place for other callers.
	SkipCache bool
}

func (p Policy) withDefaults() Policy {
	if p.TTL <= 0 {
		p.TTL = DefaultTTL
	}
	if p.RetryAttempts == 0 {
		p.RetryAttempts = DefaultRetryAttempts
	}
	if p.RetryAttempts < 0 {
		p.RetryAttempts = 0
	}
	if p.RetryBaseDelay <= 0 {
		p.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return p
}

// Config is the engine configuration section loaded from the environment.
type Config struct {
	// TTLMillis is the cache freshness window in milliseconds.
	TTLMillis int `mapstructure:"ttl_millis" default:"30000"`
	// RetryAttempts is the number of retries after the initial attempt.
	RetryAttempts int `mapstructure:"retry_attempts" default:"3"`
	// RetryBaseDelayMillis is the first backoff delay in milliseconds.
	RetryBaseDelayMillis int `mapstructure:"retry_base_delay_millis" default:"1000"`
}

// Policy converts the configuration section into an execution policy.
func (c Config) Policy() Policy {
	return Policy{
		TTL:            time.Duration(c.TTLMillis) * time.Millisecond,
		RetryAttempts:  c.RetryAttempts,
		RetryBaseDelay: time.Duration(c.RetryBaseDelayMillis) * time.Millisecond,
	}.withDefaults()
}
