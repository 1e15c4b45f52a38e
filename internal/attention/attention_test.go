package attention_test

import (
	"testing"
	"time"

	"github.com/slrhq/hireops/internal/attention"
	"github.com/slrhq/hireops/pkg/models"
)

func millisAgo(now time.Time, d time.Duration) int64 {
	return now.Add(-d).UTC().UnixMilli()
}

func TestCompute(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fresh := millisAgo(now, time.Hour)
	threeDays := millisAgo(now, 72*time.Hour)

	snap := attention.Snapshot{
		Candidates: []models.Candidate{
			// stuck in hr_screening 3 days, no CAF submission: overdue + stuck
			{ID: 1, Stage: models.StageHRScreening, Status: models.StatusActive, StageEnteredAt: threeDays, Created: threeDays},
			// fresh application today, nothing pending
			{ID: 2, Stage: models.StageEnquiry, Status: models.StatusActive, StageEnteredAt: fresh, Created: fresh},
			// manual review flag
			{ID: 3, Stage: models.StageL1Interview, Status: models.StatusActive, NeedsHRReview: true, StageEnteredAt: fresh, Created: threeDays},
			// interview done, feedback missing
			{ID: 4, Stage: models.StageL1Feedback, Status: models.StatusActive, L1InterviewCount: 1, StageEnteredAt: fresh, Created: threeDays},
			// sprint running 3 days
			{ID: 5, Stage: models.StageSprint, Status: models.StatusActive, StageEnteredAt: threeDays, Created: threeDays},
			// terminal candidates never count, however stale
			{ID: 6, Stage: models.StageHired, Status: models.StatusHired, StageEnteredAt: threeDays, Created: threeDays},
			{ID: 7, Stage: models.StageRejected, Status: models.StatusRejected, StageEnteredAt: threeDays, Created: threeDays},
		},
		OpeningRequests: []models.OpeningRequest{
			{ID: 1, Status: models.RequestPendingHRApproval},
			{ID: 2, Status: models.RequestApplied},
			{ID: 3, Status: models.RequestPendingHRApproval},
		},
		Offers: []models.Offer{
			{ID: 1, Status: models.OfferSent},
			{ID: 2, Status: models.OfferViewed},
			{ID: 3, Status: models.OfferDraft},
			{ID: 4, Status: models.OfferAccepted},
		},
	}

	got := attention.Compute(snap, now)

	if got.CAFPendingOverdue != 1 {
		t.Fatalf("caf_pending_overdue = %d want 1", got.CAFPendingOverdue)
	}
	if got.NeedsReviewAmber != 1 {
		t.Fatalf("needs_review_amber = %d want 1", got.NeedsReviewAmber)
	}
	// candidates 1 and 5 sit past the stuck threshold
	if got.StuckInStageOverDays != 2 {
		t.Fatalf("stuck_in_stage_over_days = %d want 2", got.StuckInStageOverDays)
	}
	if got.FeedbackPending != 1 {
		t.Fatalf("feedback_pending = %d want 1", got.FeedbackPending)
	}
	if got.SprintsOverdue != 1 {
		t.Fatalf("sprints_overdue = %d want 1", got.SprintsOverdue)
	}
	if got.OffersAwaitingResponse != 2 {
		t.Fatalf("offers_awaiting_response = %d want 2", got.OffersAwaitingResponse)
	}
	if got.NewApplicationsToday != 1 {
		t.Fatalf("new_applications_today = %d want 1", got.NewApplicationsToday)
	}
	if got.OpeningRequestsPending != 2 {
		t.Fatalf("opening_requests_pending = %d want 2", got.OpeningRequestsPending)
	}
}

func TestCompute_EmptySnapshot(t *testing.T) {
	got := attention.Compute(attention.Snapshot{}, time.Now())
	if got != (attention.Counts{}) {
		t.Fatalf("empty snapshot must yield zero counts: %#v", got)
	}
}
