package models

import "encoding/json"

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps are unix milliseconds UTC; nullable ones are pointers.

// Candidate funnel stages. The funnel order is advisory; only terminal
// stages are hard-blocked (see internal/funnel).
const (
	StageEnquiry          = "enquiry"
	StageHRScreening      = "hr_screening"
	StageL2Shortlist      = "l2_shortlist"
	StageL2Interview      = "l2_interview"
	StageL2Feedback       = "l2_feedback"
	StageSprint           = "sprint"
	StageL1Shortlist      = "l1_shortlist"
	StageL1Interview      = "l1_interview"
	StageL1Feedback       = "l1_feedback"
	StageOffer            = "offer"
	StageJoiningDocuments = "joining_documents"
	StageHired            = "hired"
	StageDeclined         = "declined"
	StageRejected         = "rejected"
)

// Candidate status, derived from stage but tracked independently for
// list filtering.
const (
	StatusActive   = "active"
	StatusHired    = "hired"
	StatusRejected = "rejected"
	StatusDeclined = "declined"
)

// Screening results. Legacy synonyms green/amber/red normalize on write.
const (
	ScreeningLow    = "low"
	ScreeningMedium = "medium"
	ScreeningHigh   = "high"
)

// Candidate provenance, immutable after creation.
const (
	SourceUI          = "ui"
	SourcePublicApply = "public_apply"
	SourceGoogleSheet = "google_sheet"
)

type Candidate struct {
	ID                  int64  `json:"id" db:"id"`
	Code                string `json:"candidate_code" db:"code"`
	Name                string `json:"name" db:"name"`
	Email               string `json:"email" db:"email"`
	OpeningID           *int64 `json:"opening_id,omitempty" db:"opening_id"`
	Stage               string `json:"stage" db:"stage"`
	Status              string `json:"status" db:"status"`
	ScreeningResult     string `json:"screening_result,omitempty" db:"screening_result"`
	CAFSentAt           *int64 `json:"caf_sent_at,omitempty" db:"caf_sent_at"`
	CAFSubmittedAt      *int64 `json:"caf_submitted_at,omitempty" db:"caf_submitted_at"`
	L1InterviewCount    int    `json:"l1_interview_count" db:"l1_interview_count"`
	L2InterviewCount    int    `json:"l2_interview_count" db:"l2_interview_count"`
	L1FeedbackSubmitted bool   `json:"l1_feedback_submitted" db:"l1_feedback_submitted"`
	L2FeedbackSubmitted bool   `json:"l2_feedback_submitted" db:"l2_feedback_submitted"`
	NeedsHRReview       bool   `json:"needs_hr_review" db:"needs_hr_review"`
	SourceOrigin        string `json:"source_origin" db:"source_origin"`
	SourceChannel       string `json:"source_channel,omitempty" db:"source_channel"`
	ResumeURL           string `json:"resume_url,omitempty" db:"resume_url"`
	StageEnteredAt      int64  `json:"stage_entered_at" db:"stage_entered_at"`
	Created             int64  `json:"created" db:"created"`
	Updated             int64  `json:"updated" db:"updated"`
}

// CandidateView is the read projection: the stored record plus triage
// fields recomputed on every read, never persisted.
type CandidateView struct {
	Candidate
	AgeingDays        int    `json:"ageing_days"`
	AppliedAgeingDays int    `json:"applied_ageing_days"`
	Priority          string `json:"priority,omitempty"`
	NeedsAttention    bool   `json:"needs_attention"`
}

type Comment struct {
	ID          int64  `json:"id" db:"id"`
	CandidateID int64  `json:"candidate_id" db:"candidate_id"`
	AuthorID    int64  `json:"author_id" db:"author_id"`
	Body        string `json:"body" db:"body"`
	IsInternal  bool   `json:"is_internal" db:"is_internal"`
	Created     int64  `json:"created" db:"created"`
}

type Opening struct {
	ID                int64  `json:"id" db:"id"`
	Code              string `json:"opening_code" db:"code"`
	Title             string `json:"title" db:"title"`
	HeadcountRequired int    `json:"headcount_required" db:"headcount_required"`
	IsActive          bool   `json:"is_active" db:"is_active"`
	RequestedByID     *int64 `json:"requested_by_person_id,omitempty" db:"requested_by_person_id"`
	Created           int64  `json:"created" db:"created"`
	Updated           int64  `json:"updated" db:"updated"`
}

// Opening request statuses.
const (
	RequestPendingHRApproval = "pending_hr_approval"
	RequestApplied           = "applied"
	RequestRejected          = "rejected"
)

type OpeningRequest struct {
	ID                 int64  `json:"id" db:"id"`
	OpeningCode        string `json:"opening_code,omitempty" db:"opening_code"`
	Title              string `json:"title,omitempty" db:"title"`
	HeadcountDelta     int    `json:"headcount_delta" db:"headcount_delta"`
	HiringManagerID    *int64 `json:"hiring_manager_person_id,omitempty" db:"hiring_manager_person_id"`
	HiringManagerEmail string `json:"hiring_manager_email,omitempty" db:"hiring_manager_email"`
	GLDetails          string `json:"gl_details,omitempty" db:"gl_details"`
	L2Details          string `json:"l2_details,omitempty" db:"l2_details"`
	RequestReason      string `json:"request_reason,omitempty" db:"request_reason"`
	SourcePortal       string `json:"source_portal,omitempty" db:"source_portal"`
	Status             string `json:"status" db:"status"`
	RejectedReason     string `json:"rejected_reason,omitempty" db:"rejected_reason"`
	ApprovalNote       string `json:"approval_note,omitempty" db:"approval_note"`
	RaisedByID         *int64 `json:"raised_by_person_id,omitempty" db:"raised_by_person_id"`
	Created            int64  `json:"created" db:"created"`
	Updated            int64  `json:"updated" db:"updated"`
}

// Offer statuses.
const (
	OfferDraft           = "draft"
	OfferPendingApproval = "pending_approval"
	OfferApproved        = "approved"
	OfferSent            = "sent"
	OfferViewed          = "viewed"
	OfferAccepted        = "accepted"
	OfferDeclined        = "declined"
	OfferWithdrawn       = "withdrawn"
)

// Offer approval decisions, set exactly once per approval cycle.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

type Offer struct {
	ID               int64  `json:"id" db:"id"`
	CandidateID      int64  `json:"candidate_id" db:"candidate_id"`
	DesignationTitle string `json:"designation_title" db:"designation_title"`
	GrossCTCAnnual   int64  `json:"gross_ctc_annual" db:"gross_ctc_annual"`
	Currency         string `json:"currency" db:"currency"`
	JoiningDate      string `json:"joining_date,omitempty" db:"joining_date"`
	Status           string `json:"offer_status" db:"status"`
	ApprovalDecision string `json:"approval_decision,omitempty" db:"approval_decision"`
	DecisionReason   string `json:"decision_reason,omitempty" db:"decision_reason"`
	ApprovalToken    string `json:"-" db:"approval_token"`
	TokenExpiresAt   *int64 `json:"-" db:"token_expires_at"`
	Created          int64  `json:"created" db:"created"`
	Updated          int64  `json:"updated" db:"updated"`
}

type Person struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Email        string          `json:"email" db:"email"`
	PasswordHash string          `json:"-" db:"password_hash"`
	Signals      IdentitySignals `json:"signals"`
	Updated      int64           `json:"updated" db:"updated"`
}

// IntakeSchema is a stored JSON schema applied to intake payloads
// (public apply form, sheet rows).
type IntakeSchema struct {
	Version     string `json:"version" db:"version"`
	Description string `json:"description,omitempty" db:"description"`
	SchemaJSON  string `json:"schema_json" db:"schema_json"`
	Created     int64  `json:"created" db:"created"`
	Updated     int64  `json:"updated" db:"updated"`
}

// IdentitySignals carries the raw, heterogeneous role claims as they arrive
// from the session. No single field is authoritative; internal/capability
// merges them per request.
type IdentitySignals struct {
	RoleID    json.Number   `json:"role_id,omitempty"`
	RoleIDs   []json.Number `json:"role_ids,omitempty"`
	RoleCode  string        `json:"role_code,omitempty"`
	RoleCodes []string      `json:"role_codes,omitempty"`
	RoleName  string        `json:"role_name,omitempty"`
	RoleNames []string      `json:"role_names,omitempty"`
	Roles     []string      `json:"roles,omitempty"`
}
