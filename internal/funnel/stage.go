package funnel

import (
	"time"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/capability"
	"github.com/slrhq/hireops/pkg/models"
)

// Funnel order. Advisory only: HR moves candidates freely between
// non-terminal stages, so order is not enforced on Advance.
var stageOrder = []string{
	models.StageEnquiry,
	models.StageHRScreening,
	models.StageL2Shortlist,
	models.StageL2Interview,
	models.StageL2Feedback,
	models.StageSprint,
	models.StageL1Shortlist,
	models.StageL1Interview,
	models.StageL1Feedback,
	models.StageOffer,
	models.StageJoiningDocuments,
	models.StageHired,
}

// Legacy stage aliases still present in sheet imports and old records.
var stageAliases = map[string]string{
	"caf": models.StageHRScreening,
	"l1":  models.StageL1Interview,
	"l2":  models.StageL2Interview,
}

var knownStages = func() map[string]bool {
	m := make(map[string]bool, len(stageOrder)+2)
	for _, s := range stageOrder {
		m[s] = true
	}
	m[models.StageDeclined] = true
	m[models.StageRejected] = true
	return m
}()

// NormalizeStage maps legacy aliases onto the canonical stage name. The
// second return is false for stages outside the catalog.
func NormalizeStage(s string) (string, bool) {
	if canon, ok := stageAliases[s]; ok {
		return canon, true
	}
	if knownStages[s] {
		return s, true
	}
	return s, false
}

// IsTerminal reports whether the stage is an end state. Terminal stages
// are never left; candidates are never physically deleted.
func IsTerminal(stage string) bool {
	switch stage {
	case models.StageHired, models.StageDeclined, models.StageRejected:
		return true
	}
	return false
}

// StatusFor derives the independent status field from a stage.
func StatusFor(stage string) string {
	switch stage {
	case models.StageHired:
		return models.StatusHired
	case models.StageRejected:
		return models.StatusRejected
	case models.StageDeclined:
		return models.StatusDeclined
	}
	return models.StatusActive
}

// Advance moves the candidate to target and resets the ageing baseline.
// Capability is the only hard gate besides the terminal-stage rule: the
// funnel order itself is not enforced.
func Advance(c *models.Candidate, target string, caps capability.Set, now time.Time) error {
	if !caps.CanManageStages() {
		return apperr.New(apperr.CodeUnauthorized, "stage management requires hr capability")
	}
	canon, ok := NormalizeStage(target)
	if !ok {
		return apperr.Newf(apperr.CodeInvalidRequest, "unknown stage %q", target)
	}
	cur, _ := NormalizeStage(c.Stage)
	if IsTerminal(cur) && canon != cur {
		return apperr.Newf(apperr.CodeInvalidTransition, "candidate %s is %s", c.Code, cur)
	}
	c.Stage = canon
	c.Status = StatusFor(canon)
	c.StageEnteredAt = now.UTC().UnixMilli()
	c.Updated = now.UTC().UnixMilli()
	return nil
}
