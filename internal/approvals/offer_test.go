package approvals_test

import (
	"context"
	"testing"
	"time"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/approvals"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository/mock"
)

func newOfferWorkflow(m *mock.Mocks) *approvals.Offers {
	return approvals.NewOffers(m.Offers, m.Candidates, nil, time.Hour, nil)
}

func seedCandidate(m *mock.Mocks) {
	m.Candidates.Stored = []*models.Candidate{{
		ID: 1, Code: "SLR-0001", Name: "Asha", Email: "asha@example.com",
		Stage: models.StageOffer, Status: models.StatusActive,
	}}
}

func TestOfferCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresHR", func(t *testing.T) {
		m := mock.NewMocks()
		seedCandidate(m)
		wf := newOfferWorkflow(m)
		_, err := wf.Create(ctx, &models.Offer{CandidateID: 1, DesignationTitle: "Engineer"}, viewerCaps)
		if apperr.CodeOf(err) != apperr.CodeUnauthorized {
			t.Fatalf("expected unauthorized got %v", err)
		}
	})

	t.Run("UnknownCandidate", func(t *testing.T) {
		m := mock.NewMocks()
		wf := newOfferWorkflow(m)
		_, err := wf.Create(ctx, &models.Offer{CandidateID: 42, DesignationTitle: "Engineer"}, hrCaps)
		if apperr.CodeOf(err) != apperr.CodeNotFound {
			t.Fatalf("expected not_found got %v", err)
		}
	})

	t.Run("StartsAsDraft", func(t *testing.T) {
		m := mock.NewMocks()
		seedCandidate(m)
		wf := newOfferWorkflow(m)
		o, err := wf.Create(ctx, &models.Offer{CandidateID: 1, DesignationTitle: "Engineer", GrossCTCAnnual: 2400000, Currency: "INR"}, hrCaps)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if o.Status != models.OfferDraft {
			t.Fatalf("expected draft got %s", o.Status)
		}
	})
}

func TestOfferApprovalCycle(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	seedCandidate(m)
	wf := newOfferWorkflow(m)

	created, err := wf.Create(ctx, &models.Offer{CandidateID: 1, DesignationTitle: "Engineer"}, hrCaps)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// only the draft can enter a cycle; sending before approval is blocked
	if _, err := wf.MarkSent(ctx, created.ID, hrCaps); apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("sending a draft must fail, got %v", err)
	}

	pending, err := wf.RequestApproval(ctx, created.ID, hrCaps)
	if err != nil {
		t.Fatalf("RequestApproval: %v", err)
	}
	if pending.Status != models.OfferPendingApproval {
		t.Fatalf("expected pending_approval got %s", pending.Status)
	}
	token := m.Offers.Stored[0].ApprovalToken
	if token == "" {
		t.Fatalf("no approval token issued")
	}

	// a second request while pending must not mint a second token
	if _, err := wf.RequestApproval(ctx, created.ID, hrCaps); apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("re-request while pending must fail, got %v", err)
	}

	decided, err := wf.Decide(ctx, token, models.DecisionApproved, "")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != models.OfferApproved || decided.ApprovalDecision != models.DecisionApproved {
		t.Fatalf("unexpected decided state: %#v", decided)
	}

	// replay with the same token returns the stored decision, no error
	replay, err := wf.Decide(ctx, token, models.DecisionRejected, "changed my mind")
	if err != nil {
		t.Fatalf("replay Decide: %v", err)
	}
	if replay.Status != models.OfferApproved || replay.ApprovalDecision != models.DecisionApproved {
		t.Fatalf("replay must not overwrite the decision: %#v", replay)
	}

	sent, err := wf.MarkSent(ctx, created.ID, hrCaps)
	if err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if sent.Status != models.OfferSent {
		t.Fatalf("expected sent got %s", sent.Status)
	}
}

func TestOfferDecide_Rejection(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	seedCandidate(m)
	wf := newOfferWorkflow(m)

	created, err := wf.Create(ctx, &models.Offer{CandidateID: 1, DesignationTitle: "Engineer"}, hrCaps)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := wf.RequestApproval(ctx, created.ID, hrCaps); err != nil {
		t.Fatalf("RequestApproval: %v", err)
	}
	token := m.Offers.Stored[0].ApprovalToken

	if _, err := wf.Decide(ctx, token, models.DecisionRejected, ""); apperr.CodeOf(err) != apperr.CodeInvalidRequest {
		t.Fatalf("rejection without a reason must fail, got %v", err)
	}
	if _, err := wf.Decide(ctx, token, "maybe", ""); apperr.CodeOf(err) != apperr.CodeInvalidRequest {
		t.Fatalf("unknown decision must fail, got %v", err)
	}

	rejected, err := wf.Decide(ctx, token, models.DecisionRejected, "band mismatch")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	// rejection returns the offer to draft with the reason retained
	if rejected.Status != models.OfferDraft || rejected.DecisionReason != "band mismatch" {
		t.Fatalf("unexpected rejected state: %#v", rejected)
	}

	// a fresh cycle mints a new token and clears the old decision
	again, err := wf.RequestApproval(ctx, created.ID, hrCaps)
	if err != nil {
		t.Fatalf("second RequestApproval: %v", err)
	}
	if again.Status != models.OfferPendingApproval {
		t.Fatalf("expected pending_approval got %s", again.Status)
	}
	if m.Offers.Stored[0].ApprovalToken == token {
		t.Fatalf("new cycle must mint a new token")
	}
	if m.Offers.Stored[0].ApprovalDecision != "" {
		t.Fatalf("new cycle must clear the stored decision")
	}
}

func TestOfferDecide_TokenFailures(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	seedCandidate(m)
	wf := newOfferWorkflow(m)

	if _, err := wf.Decide(ctx, "", models.DecisionApproved, ""); apperr.CodeOf(err) != apperr.CodeTokenInvalid {
		t.Fatalf("empty token must fail token_invalid, got %v", err)
	}
	if _, err := wf.Decide(ctx, "nope", models.DecisionApproved, ""); apperr.CodeOf(err) != apperr.CodeTokenInvalid {
		t.Fatalf("unknown token must fail token_invalid, got %v", err)
	}

	created, err := wf.Create(ctx, &models.Offer{CandidateID: 1, DesignationTitle: "Engineer"}, hrCaps)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := wf.RequestApproval(ctx, created.ID, hrCaps); err != nil {
		t.Fatalf("RequestApproval: %v", err)
	}

	// force the token past its expiry; the decision must fail closed
	past := time.Now().Add(-time.Minute).UTC().UnixMilli()
	m.Offers.Stored[0].TokenExpiresAt = &past
	token := m.Offers.Stored[0].ApprovalToken

	if _, err := wf.Decide(ctx, token, models.DecisionApproved, ""); apperr.CodeOf(err) != apperr.CodeTokenExpired {
		t.Fatalf("expected token_expired got %v", err)
	}
	if got := m.Offers.Stored[0]; got.Status != models.OfferPendingApproval || got.ApprovalDecision != "" {
		t.Fatalf("expired decide must not mutate state: %#v", got)
	}
}
