package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// startSpan opens a sentry span for one cache call. Nil when the request carries no hub.
func startSpan(ctx context.Context, backend, operation, key string) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	name := "cache." + backend + "." + operation
	span := sentry.StartSpan(ctx, name)
	span.Description = name
	span.Op = "cache." + operation
	span.SetData("cache.backend", backend)
	span.SetData("cache.key", key)
	return span
}

// finishSpan records a hit or miss and any backend error
func finishSpan(span *sentry.Span, hit bool, err error) {
	if span == nil {
		return
	}
	span.SetData("cache.hit", hit)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}
