package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/slrhq/hireops/internal/jobs"
)

// Enqueuer is the slice of the job queue the emitter needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority, maxAttempts int) (int64, error)
}

// Emitter fans domain events out to the external collaborators: the
// notification dispatcher and the change-signal transport. Emission never
// fails the triggering mutation; failures are logged and dropped (the
// queue's own retry handles transient delivery errors).
type Emitter struct {
	queue  Enqueuer
	logger *slog.Logger
}

func New(queue Enqueuer, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{queue: queue, logger: logger}
}

func (e *Emitter) emit(ctx context.Context, typ string, payload any) {
	if e == nil || e.queue == nil {
		return
	}
	if _, err := e.queue.Enqueue(ctx, typ, payload, 100, 3); err != nil {
		e.logger.Error("enqueue signal", slog.String("type", typ), slog.Any("err", err))
	}
}

func (e *Emitter) StageChanged(ctx context.Context, candidateID int64, from, to string) {
	e.emit(ctx, jobs.TypeStageChanged, map[string]any{"candidate_id": candidateID, "from": from, "to": to})
	e.Changed(ctx, "candidate", candidateID)
}

func (e *Emitter) OpeningRequestDecided(ctx context.Context, requestID int64, status string) {
	e.emit(ctx, jobs.TypeOpeningRequestDecided, map[string]any{"opening_request_id": requestID, "status": status})
	e.Changed(ctx, "opening_request", requestID)
}

func (e *Emitter) OfferDecided(ctx context.Context, offerID int64, decision string) {
	e.emit(ctx, jobs.TypeOfferDecided, map[string]any{"offer_id": offerID, "decision": decision})
	e.Changed(ctx, "offer", offerID)
}

// Changed tells connected clients to refetch the named entity. The core
// only emits the signal; push delivery is the transport collaborator's job.
func (e *Emitter) Changed(ctx context.Context, kind string, id int64) {
	e.emit(ctx, jobs.TypeChangeSignal, map[string]any{"kind": kind, "id": id})
}

// Sender delivers one notification payload to the external dispatcher.
type Sender interface {
	Send(ctx context.Context, typ string, payload json.RawMessage) error
}

// Handlers builds the queue handler map that forwards each signal type to
// the sender.
func Handlers(s Sender) map[string]jobs.Handler {
	forward := func(ctx context.Context, j *jobs.Job) error {
		return s.Send(ctx, j.Type, j.Payload)
	}
	return map[string]jobs.Handler{
		jobs.TypeStageChanged:          forward,
		jobs.TypeOpeningRequestDecided: forward,
		jobs.TypeOfferDecided:          forward,
		jobs.TypeChangeSignal:          forward,
	}
}
