package funnel

import (
	"time"

	"github.com/slrhq/hireops/pkg/models"
)

// Triage thresholds (days).
const (
	StuckAgeingDays      = 2
	CAFOverdueAgeingDays = 3
)

// Priority buckets derived from screening result and ageing.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

func wholeDays(fromMilli int64, now time.Time) int {
	if fromMilli <= 0 {
		return 0
	}
	d := now.UTC().Sub(time.UnixMilli(fromMilli).UTC())
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// AgeingDays is the whole days spent in the current stage.
func AgeingDays(c *models.Candidate, now time.Time) int {
	return wholeDays(c.StageEnteredAt, now)
}

// AppliedAgeingDays is the whole days since the candidate was created,
// zero when the creation timestamp is missing.
func AppliedAgeingDays(c *models.Candidate, now time.Time) int {
	return wholeDays(c.Created, now)
}

// Priority classifies the candidate for triage. Ageing alone can raise a
// candidate to high even without a screening result.
func Priority(c *models.Candidate, now time.Time) string {
	if c.ScreeningResult == models.ScreeningHigh || AgeingDays(c, now) >= StuckAgeingDays {
		return PriorityHigh
	}
	switch c.ScreeningResult {
	case models.ScreeningMedium:
		return PriorityMedium
	case models.ScreeningLow:
		return PriorityLow
	}
	return ""
}

// NeedsAttention is the OR of every triage condition. Intentionally
// inclusive: any classified screening result flags attention, and the
// manual needs_hr_review override always dominates.
func NeedsAttention(c *models.Candidate, now time.Time) bool {
	if c.NeedsHRReview {
		return true
	}
	if Priority(c, now) != "" {
		return true
	}
	ageing := AgeingDays(c, now)
	if ageing >= StuckAgeingDays {
		return true
	}
	if c.Stage == models.StageHRScreening && c.CAFSubmittedAt == nil && ageing >= CAFOverdueAgeingDays {
		return true
	}
	return false
}

// View assembles the read projection with triage fields recomputed from
// timestamps; nothing here is ever persisted.
func View(c models.Candidate, now time.Time) models.CandidateView {
	if canon, ok := NormalizeStage(c.Stage); ok {
		c.Stage = canon
	}
	return models.CandidateView{
		Candidate:         c,
		AgeingDays:        AgeingDays(&c, now),
		AppliedAgeingDays: AppliedAgeingDays(&c, now),
		Priority:          Priority(&c, now),
		NeedsAttention:    NeedsAttention(&c, now),
	}
}
