package attention

import (
	"time"

	"github.com/slrhq/hireops/internal/funnel"
	"github.com/slrhq/hireops/pkg/models"
)

// Snapshot is the read-side input: current candidates plus the approval
// backlogs. The aggregator adds no business rules of its own; every count
// is a filter over the funnel's derived fields.
type Snapshot struct {
	Candidates      []models.Candidate
	OpeningRequests []models.OpeningRequest
	Offers          []models.Offer
}

type Counts struct {
	CAFPendingOverdue      int `json:"caf_pending_overdue"`
	NeedsReviewAmber       int `json:"needs_review_amber"`
	StuckInStageOverDays   int `json:"stuck_in_stage_over_days"`
	FeedbackPending        int `json:"feedback_pending"`
	SprintsOverdue         int `json:"sprints_overdue"`
	OffersAwaitingResponse int `json:"offers_awaiting_response"`
	NewApplicationsToday   int `json:"new_applications_today"`
	OpeningRequestsPending int `json:"opening_requests_pending"`
}

// Compute rolls the snapshot into dashboard counts. Thresholds are
// inclusive: "stuck over N days" means ageing_days >= N.
func Compute(s Snapshot, now time.Time) Counts {
	var out Counts
	today := now.UTC().Truncate(24 * time.Hour)

	for i := range s.Candidates {
		c := &s.Candidates[i]
		if funnel.IsTerminal(c.Stage) {
			continue
		}
		ageing := funnel.AgeingDays(c, now)

		if c.Stage == models.StageHRScreening && c.CAFSubmittedAt == nil && ageing >= funnel.CAFOverdueAgeingDays {
			out.CAFPendingOverdue++
		}
		if c.NeedsHRReview || funnel.Priority(c, now) == funnel.PriorityMedium {
			out.NeedsReviewAmber++
		}
		if ageing >= funnel.StuckAgeingDays {
			out.StuckInStageOverDays++
		}
		if (c.L1InterviewCount > 0 && !c.L1FeedbackSubmitted) || (c.L2InterviewCount > 0 && !c.L2FeedbackSubmitted) {
			out.FeedbackPending++
		}
		if c.Stage == models.StageSprint && ageing >= funnel.StuckAgeingDays {
			out.SprintsOverdue++
		}
		if !time.UnixMilli(c.Created).UTC().Before(today) {
			out.NewApplicationsToday++
		}
	}

	for _, r := range s.OpeningRequests {
		if r.Status == models.RequestPendingHRApproval {
			out.OpeningRequestsPending++
		}
	}

	for _, o := range s.Offers {
		switch o.Status {
		case models.OfferSent, models.OfferViewed:
			out.OffersAwaitingResponse++
		}
	}

	return out
}
