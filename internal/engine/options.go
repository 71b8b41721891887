package engine

import (
	"log/slog"
	"time"

	"github.com/roach88/listsync/internal/notify"
)

// config holds Machine settings; see the With* options.
type config struct {
	section    int
	delay      time.Duration
	animation  notify.Animation
	dispatcher notify.Dispatcher
	ids        IDGenerator
	onError    func(error)
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{
		animation:  notify.AnimationNone,
		dispatcher: notify.Immediate{},
		ids:        UUIDv7Generator{},
	}
}

// Option configures a Machine.
type Option func(*config)

// WithSection sets the section identifier used in every index path.
// Default: 0. Use one Machine per section.
func WithSection(section int) Option {
	return func(c *config) {
		c.section = section
	}
}

// WithDelay sets the pause the worker takes after each mutation that
// notified the view, pacing animations instead of firing them back-to-back.
// Default: 0 (no pacing).
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithAnimation sets the animation token passed through to the view.
// Default: notify.AnimationNone.
func WithAnimation(a notify.Animation) Option {
	return func(c *config) {
		c.animation = a
	}
}

// WithDispatcher sets the notification execution context. Store mutation,
// sink notification and completion callbacks all run there.
// Default: notify.Immediate (the worker goroutine).
func WithDispatcher(d notify.Dispatcher) Option {
	return func(c *config) {
		c.dispatcher = d
	}
}

// WithIDGenerator overrides mutation ID generation (for deterministic tests).
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) {
		c.ids = g
	}
}

// WithErrorHandler registers fn to receive every *MutationError in addition
// to the log line. fn runs on the notification context.
func WithErrorHandler(fn func(error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// WithLogger sets the logger. Default: slog.Default() at construction time.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
