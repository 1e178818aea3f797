package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/cognitokit/errors"
)

// Operation status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// OperationContext tracks one Cognito call from span start to metric record.
type OperationContext struct {
	Operation string
	Username  string
	StartTime time.Time
	Metrics   *Metrics
}

// NewOperationContext creates a new operation context.
// If metrics is nil, metric recording is silently skipped.
func NewOperationContext(operation, username string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		Operation: operation,
		Username:  username,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// Start opens a span for the operation.
func (oc *OperationContext) Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(attribute.String(AttrOperationName, oc.Operation))
	if oc.Username != "" {
		span.SetAttributes(attribute.String(AttrUsername, oc.Username))
	}
	span.SetAttributes(attrs...)
	return ctx, span
}

// End closes the span and records the operation metric. Errors are counted
// by their AppError code.
func (oc *OperationContext) End(ctx context.Context, span trace.Span, err error) {
	duration := time.Since(oc.StartTime)

	status := StatusOK
	if err != nil {
		status = StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
		oc.Metrics.RecordError(ctx, string(errorCode(err)), oc.Operation)
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	oc.Metrics.RecordOperation(ctx, oc.Operation, status, duration)
}

// Duration returns the elapsed time since operation start.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}

func errorCode(err error) apperrors.ErrorCode {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Code
	}
	return apperrors.ErrCodeInternal
}
