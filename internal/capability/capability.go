package capability

import (
	"strconv"
	"strings"

	"github.com/slrhq/hireops/pkg/models"
)

// Reserved role ids from the identity provider.
const (
	roleIDSuperadmin       = 2
	roleIDHR               = 5
	roleIDRestrictedViewer = 6
)

var superadminTokens = map[string]bool{
	"2":           true,
	"superadmin":  true,
	"s_admin":     true,
	"super_admin": true,
}

var interviewerTokens = map[string]bool{
	"interviewer":    true,
	"gl":             true,
	"group_lead":     true,
	"grouplead":      true,
	"hiring_manager": true,
}

// Set is the canonical permission set for one request. It is a value:
// compute it once per request from the session's claims and pass it into
// every gate; never cache it across requests.
type Set struct {
	IsSuperadmin       bool
	IsHR               bool
	IsRestrictedViewer bool
	IsInterviewer      bool
}

// Resolve merges the heterogeneous role signals into a Set. Total and
// deterministic: unknown or malformed signals resolve to no capability,
// never to an error.
func Resolve(sig models.IdentitySignals) Set {
	ids := map[int]bool{}
	addID := func(n string) {
		v, err := strconv.Atoi(strings.TrimSpace(n))
		if err == nil {
			ids[v] = true
		}
	}
	if sig.RoleID != "" {
		addID(string(sig.RoleID))
	}
	for _, n := range sig.RoleIDs {
		addID(string(n))
	}

	var tokens []string
	addToken := func(s string) {
		if t := normalize(s); t != "" {
			tokens = append(tokens, t)
		}
	}
	addToken(sig.RoleCode)
	addToken(sig.RoleName)
	for _, s := range sig.RoleCodes {
		addToken(s)
	}
	for _, s := range sig.RoleNames {
		addToken(s)
	}
	for _, s := range sig.Roles {
		addToken(s)
	}

	var out Set
	for _, t := range tokens {
		if superadminTokens[t] {
			out.IsSuperadmin = true
		}
		if isHRToken(t) {
			out.IsHR = true
		}
		if interviewerTokens[t] {
			out.IsInterviewer = true
		}
	}
	if ids[roleIDSuperadmin] {
		out.IsSuperadmin = true
	}
	if ids[roleIDHR] {
		out.IsHR = true
	}
	// HR status is strictly additive: cohort membership never revokes it.
	if out.IsSuperadmin {
		out.IsHR = true
	}
	out.IsRestrictedViewer = ids[roleIDHR] || ids[roleIDRestrictedViewer]

	return out
}

// normalize trims, lowercases, and collapses runs of whitespace and
// hyphens into a single underscore.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	sep := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

func isHRToken(t string) bool {
	if t == "hr" || strings.HasPrefix(t, "hr_") {
		return true
	}
	return strings.Contains(strings.ReplaceAll(t, "_", ""), "humanresource")
}

// Derived permissions consumed by the workflow gates.

func (s Set) CanRaiseOpeningRequest() bool   { return s.IsHR || s.IsRestrictedViewer }
func (s Set) CanApproveOpeningRequest() bool { return s.IsHR }
func (s Set) CanManageOpeningRequest() bool  { return s.IsSuperadmin }
func (s Set) CanAccessCandidate360() bool    { return !(s.IsRestrictedViewer && !s.IsHR) }
func (s Set) CanScheduleInterview() bool     { return s.IsHR }
func (s Set) CanManageStages() bool          { return s.IsHR }
func (s Set) CanCreateOpening() bool         { return s.IsSuperadmin }
func (s Set) CanToggleOpening() bool         { return s.IsSuperadmin || s.IsHR }
func (s Set) CanDelete() bool                { return s.IsSuperadmin }
func (s Set) CanWriteInternalNotes() bool    { return s.IsHR }
func (s Set) CanRequestOfferApproval() bool  { return s.IsHR }
