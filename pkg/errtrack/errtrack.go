// Package errtrack forwards unexpected failures to Sentry. With no DSN configured every call is a no-op.
package errtrack

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

func Init(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	return nil
}

// Capture reports err with tags describing the publish it belongs to.
func Capture(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// CaptureRecovered reports a recovered panic value.
func CaptureRecovered(recovered interface{}, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CurrentHub().Recover(recovered)
	})
}

func Flush() {
	sentry.Flush(2 * time.Second)
}
