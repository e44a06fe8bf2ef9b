package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	defaultRetries   = 3
	defaultTimeout   = 10 * time.Second
	defaultBaseDelay = time.Second
)

// Config configures an Executor.
type Config struct {
	// Retries is the number of retries after the first attempt.
	Retries int `mapstructure:"retries"`
	// Timeout bounds each attempt.
	Timeout time.Duration `mapstructure:"timeout"`
	// BaseDelay is multiplied by 2^attempt between attempts.
	BaseDelay time.Duration `mapstructure:"base_delay"`
	// Headers are sent with every request. Content-Type defaults to JSON.
	Headers map[string]string `mapstructure:"headers"`
	// RetryIf decides whether a failed attempt is retried. Nil retries all.
	RetryIf func(error) bool `mapstructure:"-"`
}

// DefaultConfig returns three retries, a ten second timeout and one second
// base delay.
func DefaultConfig() Config {
	return Config{
		Retries:   defaultRetries,
		Timeout:   defaultTimeout,
		BaseDelay: defaultBaseDelay,
		Headers:   map[string]string{"Content-Type": "application/json"},
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Retries, validation.Min(0)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.BaseDelay, validation.Min(time.Duration(0))),
	)
}
