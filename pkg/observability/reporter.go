package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

const defaultFlushTimeout = 2 * time.Second

// ErrorReporter forwards failures to Sentry. A reporter built without a DSN
// is a no-op, as is a nil *ErrorReporter.
type ErrorReporter struct {
	hub *sentry.Hub
}

// ReporterOptions configures an ErrorReporter.
type ReporterOptions struct {
	DSN         string
	Environment string
	Release     string

	// BeforeSend may inspect or drop events before they are sent.
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// NewErrorReporter creates a reporter with its own Sentry client and hub.
// User data is stripped from every event.
func NewErrorReporter(opts ReporterOptions) (*ErrorReporter, error) {
	if opts.DSN == "" {
		return &ErrorReporter{}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event.User = sentry.User{}

			if opts.BeforeSend != nil {
				return opts.BeforeSend(event, hint)
			}

			return event
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create sentry client: %w", err)
	}

	return &ErrorReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Enabled reports whether events are sent anywhere.
func (r *ErrorReporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// Capture reports err with the given tags. Context cancellation is not
// reported.
func (r *ErrorReporter) Capture(err error, tags map[string]string) {
	if !r.Enabled() || err == nil || errors.Is(err, context.Canceled) {
		return
	}

	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

// Flush waits for queued events to be delivered.
func (r *ErrorReporter) Flush() bool {
	if !r.Enabled() {
		return true
	}

	return r.hub.Flush(defaultFlushTimeout)
}
