package notify_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/goleak"

	"github.com/slrhq/hireops/internal/jobs"
	"github.com/slrhq/hireops/internal/notify"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeQueue struct {
	types    []string
	payloads []json.RawMessage
	err      error
}

func (f *fakeQueue) Enqueue(ctx context.Context, typ string, payload any, priority, maxAttempts int) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	b, _ := json.Marshal(payload)
	f.types = append(f.types, typ)
	f.payloads = append(f.payloads, b)
	return int64(len(f.types)), nil
}

func TestEmitterFansOut(t *testing.T) {
	ctx := context.Background()
	q := &fakeQueue{}
	e := notify.New(q, nil)

	e.StageChanged(ctx, 7, "enquiry", "hr_screening")
	// stage change carries both the notification and the refetch signal
	if len(q.types) != 2 {
		t.Fatalf("expected 2 enqueued jobs got %d", len(q.types))
	}
	if q.types[0] != jobs.TypeStageChanged || q.types[1] != jobs.TypeChangeSignal {
		t.Fatalf("unexpected types: %v", q.types)
	}

	var payload map[string]any
	if err := json.Unmarshal(q.payloads[0], &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["from"] != "enquiry" || payload["to"] != "hr_screening" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	e.OpeningRequestDecided(ctx, 3, "applied")
	e.OfferDecided(ctx, 4, "approved")
	if len(q.types) != 6 {
		t.Fatalf("expected 6 enqueued jobs got %d", len(q.types))
	}
}

func TestEmitterNeverFailsTheMutation(t *testing.T) {
	ctx := context.Background()

	// enqueue failure is swallowed, not propagated
	q := &fakeQueue{err: fmt.Errorf("queue down")}
	e := notify.New(q, nil)
	e.Changed(ctx, "candidate", 1)

	// a nil emitter is a no-op
	var nilEmitter *notify.Emitter
	nilEmitter.Changed(ctx, "candidate", 1)
	nilEmitter.StageChanged(ctx, 1, "a", "b")
}

func TestHandlersForwardToSender(t *testing.T) {
	var gotType string
	var gotPayload []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotType = body.Type
		gotPayload = body.Payload
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := notify.NewHTTPSender(srv.URL)
	defer sender.CloseIdleConnections()
	handlers := notify.Handlers(sender)
	h, ok := handlers[jobs.TypeOfferDecided]
	if !ok {
		t.Fatalf("no handler for %s", jobs.TypeOfferDecided)
	}

	job := &jobs.Job{Type: jobs.TypeOfferDecided, Payload: json.RawMessage(`{"offer_id":4,"decision":"approved"}`)}
	if err := h(context.Background(), job); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gotType != jobs.TypeOfferDecided {
		t.Fatalf("dispatcher saw type %q", gotType)
	}
	if string(gotPayload) != `{"offer_id":4,"decision":"approved"}` {
		t.Fatalf("dispatcher saw payload %s", gotPayload)
	}
}

func TestHTTPSenderRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := notify.NewHTTPSender(srv.URL)
	defer s.CloseIdleConnections()
	if err := s.Send(context.Background(), "t", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected error for 502 response")
	}
}

func TestLogSender(t *testing.T) {
	s := notify.NewLogSender(nil)
	if err := s.Send(context.Background(), "t", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("log sender must never fail: %v", err)
	}
}
