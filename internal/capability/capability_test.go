package capability_test

import (
	"encoding/json"
	"testing"

	"github.com/slrhq/hireops/internal/capability"
	"github.com/slrhq/hireops/pkg/models"
)

func TestResolve_EmptySignals(t *testing.T) {
	got := capability.Resolve(models.IdentitySignals{})
	if got != (capability.Set{}) {
		t.Fatalf("expected zero capabilities for empty signals, got %+v", got)
	}
}

func TestResolve_SuperadminFromID(t *testing.T) {
	got := capability.Resolve(models.IdentitySignals{RoleID: json.Number("2")})
	if !got.IsSuperadmin {
		t.Fatalf("role id 2 must resolve superadmin")
	}
	if !got.IsHR {
		t.Fatalf("superadmin must imply hr")
	}
	if !got.CanApproveOpeningRequest() {
		t.Fatalf("superadmin must approve opening requests")
	}
}

func TestResolve_SuperadminFromMessyTokens(t *testing.T) {
	for _, raw := range []string{"  Super-Admin ", "S_ADMIN", "superadmin", "super  admin", "2"} {
		got := capability.Resolve(models.IdentitySignals{Roles: []string{raw}})
		if !got.IsSuperadmin {
			t.Fatalf("token %q must resolve superadmin", raw)
		}
	}
}

func TestResolve_HRPredicates(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"hr", true},
		{"HR-Manager", true},
		{"hr_ops", true},
		{"Human Resources Lead", true},
		{"humanresource", true},
		{"hradmin", false}, // no hr_ prefix and not a human-resource token
		{"interviewer", false},
	}
	for _, c := range cases {
		got := capability.Resolve(models.IdentitySignals{RoleName: c.raw})
		if got.IsHR != c.want {
			t.Fatalf("token %q: IsHR = %v, want %v", c.raw, got.IsHR, c.want)
		}
	}
}

func TestResolve_RestrictedViewerCohort(t *testing.T) {
	got := capability.Resolve(models.IdentitySignals{RoleIDs: []json.Number{"6"}})
	if !got.IsRestrictedViewer {
		t.Fatalf("role id 6 must resolve restricted viewer")
	}
	if got.CanAccessCandidate360() {
		t.Fatalf("restricted viewer without hr must not access candidate 360")
	}
	if !got.CanRaiseOpeningRequest() {
		t.Fatalf("restricted viewer may raise opening requests")
	}
}

func TestResolve_HRDominatesCohort(t *testing.T) {
	// Role 5 is both the HR id and part of the restricted cohort; HR must win.
	got := capability.Resolve(models.IdentitySignals{RoleID: json.Number("5")})
	if !got.IsHR || !got.IsRestrictedViewer {
		t.Fatalf("role id 5 must set both hr and restricted viewer, got %+v", got)
	}
	if !got.CanAccessCandidate360() {
		t.Fatalf("hr membership must override the cohort restriction")
	}
}

func TestResolve_Interviewer(t *testing.T) {
	for _, raw := range []string{"interviewer", "GL", "Group Lead", "grouplead", "hiring-manager"} {
		got := capability.Resolve(models.IdentitySignals{RoleCodes: []string{raw}})
		if !got.IsInterviewer {
			t.Fatalf("token %q must resolve interviewer", raw)
		}
	}
}

func TestResolve_DropsGarbageIDs(t *testing.T) {
	got := capability.Resolve(models.IdentitySignals{
		RoleID:  json.Number(""),
		RoleIDs: []json.Number{"abc", " ", "999"},
	})
	if got != (capability.Set{}) {
		t.Fatalf("garbage ids must resolve to no capability, got %+v", got)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	sig := models.IdentitySignals{
		RoleID:    json.Number("5"),
		RoleIDs:   []json.Number{"6", "9"},
		RoleCode:  "HR-Ops",
		RoleNames: []string{"Group Lead"},
		Roles:     []string{"viewer"},
	}
	a := capability.Resolve(sig)
	b := capability.Resolve(sig)
	if a != b {
		t.Fatalf("resolve not deterministic: %+v vs %+v", a, b)
	}
}

// The capability lattice is monotone: superadmin implies hr implies
// approver, across a grid of signal combinations.
func TestResolve_MonotoneLattice(t *testing.T) {
	sigs := []models.IdentitySignals{
		{RoleID: json.Number("2")},
		{RoleCode: "super_admin"},
		{RoleID: json.Number("2"), RoleIDs: []json.Number{"6"}},
		{RoleName: "hr"},
		{RoleIDs: []json.Number{"5", "6"}},
		{Roles: []string{"s_admin", "viewer"}},
	}
	for i, sig := range sigs {
		got := capability.Resolve(sig)
		if got.IsSuperadmin && !got.IsHR {
			t.Fatalf("case %d: superadmin without hr", i)
		}
		if got.IsHR && !got.CanApproveOpeningRequest() {
			t.Fatalf("case %d: hr without approver permission", i)
		}
	}
}
