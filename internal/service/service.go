package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/AdamBeresnev/pitch-perfect/internal/service")

// notFound turns a missing row into the domain's NotFoundError.
func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &football.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish never fails the caller: the write it announces is already committed.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "topic", e.Topic, "type", e.Type, "error", err)
	}
}
