package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/slrhq/hireops/api"
	dbfs "github.com/slrhq/hireops/db"
	"github.com/slrhq/hireops/internal/config"
	dbpkg "github.com/slrhq/hireops/internal/db"
)

const testSecret = "routes-test-secret"

func setupAPI(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	d, err := dbpkg.New(ctx, dsn)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		d.Close()
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Addr:          ":0",
		JWTSecret:     testSecret,
		APITimeout:    5 * time.Second,
		DatabasePath:  dsn,
		TokenDuration: time.Hour,
		OfferTokenTTL: time.Hour,
	}

	// nil queue: signal emission becomes a no-op, the workflows still run
	router, err := api.SetupRoutes(ctx, cfg, "test", "now", d, nil, nil)
	if err != nil {
		d.Close()
		t.Fatalf("SetupRoutes: %v", err)
	}

	srv := httptest.NewServer(router)
	return srv, func() { srv.Close(); d.Close() }
}

func signup(t *testing.T, srv *httptest.Server, email string, signals map[string]any) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"name": email, "email": email, "password": "pw", "signals": signals,
	})
	res, err := http.Post(srv.URL+"/v1/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("signup status %d: %s", res.StatusCode, b)
	}
	var ar struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ar); err != nil || ar.Token == "" {
		t.Fatalf("signup token: %v", err)
	}
	return ar.Token
}

func doJSON(t *testing.T, method, url, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader([]byte(`{}`))
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return res, out
}

func TestPublicApply(t *testing.T) {
	srv, cleanup := setupAPI(t)
	defer cleanup()

	// missing email fails the stored schema before any business logic
	res, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/apply", "", map[string]any{"name": "Asha"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("schema-invalid apply: expected 400 got %d", res.StatusCode)
	}

	res, body := doJSON(t, http.MethodPost, srv.URL+"/v1/apply", "", map[string]any{
		"name": "Asha", "email": "asha@example.com", "screening_result": "green",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("apply: expected 201 got %d (%v)", res.StatusCode, body)
	}
	if body["candidate_code"] != "SLR-0001" {
		t.Fatalf("expected SLR-0001 got %v", body["candidate_code"])
	}
	if body["stage"] != "enquiry" || body["source_origin"] != "public_apply" {
		t.Fatalf("unexpected candidate: %v", body)
	}
	if body["screening_result"] != "low" {
		t.Fatalf("green must normalize to low, got %v", body["screening_result"])
	}

	// same person, same (absent) opening: conflict
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/apply", "", map[string]any{
		"name": "Asha", "email": "asha@example.com",
	})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate apply: expected 409 got %d", res.StatusCode)
	}

	// the protected surface stays closed without a session
	res2, err := http.Get(srv.URL + "/v1/candidates")
	if err != nil {
		t.Fatalf("unauthenticated list: %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res2.StatusCode)
	}
}

func TestCandidateLifecycleOverHTTP(t *testing.T) {
	srv, cleanup := setupAPI(t)
	defer cleanup()

	hr := signup(t, srv, "hr@example.com", map[string]any{"role_id": 5})
	viewer := signup(t, srv, "viewer@example.com", map[string]any{"role_id": 6})

	// only HR creates candidates from the console
	res, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/candidates", viewer, map[string]any{"name": "Asha", "email": "asha@example.com"})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("viewer create: expected 403 got %d", res.StatusCode)
	}
	res, body := doJSON(t, http.MethodPost, srv.URL+"/v1/candidates", hr, map[string]any{"name": "Asha", "email": "asha@example.com"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("hr create: expected 201 got %d (%v)", res.StatusCode, body)
	}
	candidateURL := fmt.Sprintf("%s/v1/candidates/%v", srv.URL, int64(body["id"].(float64)))

	// the 360 view is withheld from the restricted cohort
	res, _ = doJSON(t, http.MethodGet, candidateURL, viewer, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("viewer 360: expected 403 got %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodGet, candidateURL, hr, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("hr 360: expected 200 got %d", res.StatusCode)
	}

	// the list view stays open to every signed-in user
	res, listBody := doJSON(t, http.MethodGet, srv.URL+"/v1/candidates", viewer, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("viewer list: expected 200 got %d", res.StatusCode)
	}
	if int(listBody["count"].(float64)) != 1 {
		t.Fatalf("expected 1 candidate got %v", listBody["count"])
	}

	// stage moves through the caf alias, viewer is blocked
	res, _ = doJSON(t, http.MethodPost, candidateURL+"/stage", viewer, map[string]any{"stage": "caf"})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("viewer stage move: expected 403 got %d", res.StatusCode)
	}
	res, stageBody := doJSON(t, http.MethodPost, candidateURL+"/stage", hr, map[string]any{"stage": "caf"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("hr stage move: expected 200 got %d (%v)", res.StatusCode, stageBody)
	}
	if stageBody["stage"] != "hr_screening" {
		t.Fatalf("caf alias must land on hr_screening, got %v", stageBody["stage"])
	}
	res, _ = doJSON(t, http.MethodPost, candidateURL+"/stage", hr, map[string]any{"stage": "warp_drive"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown stage: expected 400 got %d", res.StatusCode)
	}

	// viewer's internal flag is silently downgraded, never rejected
	res, commentBody := doJSON(t, http.MethodPost, candidateURL+"/comments", viewer, map[string]any{"body": "looks good", "is_internal": true})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("viewer comment: expected 201 got %d", res.StatusCode)
	}
	if commentBody["is_internal"] != false {
		t.Fatalf("viewer internal flag must downgrade, got %v", commentBody["is_internal"])
	}
	res, _ = doJSON(t, http.MethodPost, candidateURL+"/comments", hr, map[string]any{"body": "salary band b", "is_internal": true})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("hr comment: expected 201 got %d", res.StatusCode)
	}

	_, viewerComments := doJSON(t, http.MethodGet, candidateURL+"/comments", viewer, nil)
	if n := len(viewerComments["items"].([]any)); n != 1 {
		t.Fatalf("viewer must see 1 comment, got %d", n)
	}
	_, hrComments := doJSON(t, http.MethodGet, candidateURL+"/comments", hr, nil)
	if n := len(hrComments["items"].([]any)); n != 2 {
		t.Fatalf("hr must see 2 comments, got %d", n)
	}

	// CAF roundtrip and the manual review flag
	res, _ = doJSON(t, http.MethodPost, candidateURL+"/caf/sent", hr, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("caf sent: expected 200 got %d", res.StatusCode)
	}
	res, cafBody := doJSON(t, http.MethodPost, candidateURL+"/caf/submitted", hr, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("caf submitted: expected 200 got %d", res.StatusCode)
	}
	if cafBody["caf_submitted_at"] == nil {
		t.Fatalf("caf submission not recorded: %v", cafBody)
	}
	res, flagBody := doJSON(t, http.MethodPut, candidateURL+"/review-flag", hr, map[string]any{"needs_hr_review": true})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("review flag: expected 200 got %d", res.StatusCode)
	}
	if flagBody["needs_attention"] != true {
		t.Fatalf("review flag must force attention: %v", flagBody)
	}
}

func TestOpeningRequestFlowOverHTTP(t *testing.T) {
	srv, cleanup := setupAPI(t)
	defer cleanup()

	admin := signup(t, srv, "admin@example.com", map[string]any{"role_id": 2})
	hr := signup(t, srv, "hr@example.com", map[string]any{"role_id": 5})
	viewer := signup(t, srv, "viewer@example.com", map[string]any{"role_id": 6})

	// openings are minted by superadmin only
	res, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/openings", hr, map[string]any{"title": "Backend Engineer", "headcount_required": 1})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("hr create opening: expected 403 got %d", res.StatusCode)
	}
	res, opening := doJSON(t, http.MethodPost, srv.URL+"/v1/openings", admin, map[string]any{"title": "Backend Engineer", "headcount_required": 1})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create opening: expected 201 got %d (%v)", res.StatusCode, opening)
	}
	if opening["opening_code"] != "OPN-0001" {
		t.Fatalf("expected OPN-0001 got %v", opening["opening_code"])
	}
	openingID := int64(opening["id"].(float64))

	// a viewer raises, HR decides
	res, raised := doJSON(t, http.MethodPost, srv.URL+"/v1/opening-requests", viewer, map[string]any{
		"opening_code": "OPN-0001", "headcount_delta": 2, "request_reason": "team growth",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("raise: expected 201 got %d (%v)", res.StatusCode, raised)
	}
	requestID := int64(raised["id"].(float64))

	res, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/opening-requests/%d/approve", srv.URL, requestID), viewer, nil)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("viewer approve: expected 403 got %d", res.StatusCode)
	}
	res, approved := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/opening-requests/%d/approve", srv.URL, requestID), hr, map[string]any{"approval_note": "cleared"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("approve: expected 200 got %d (%v)", res.StatusCode, approved)
	}
	if approved["status"] != "applied" {
		t.Fatalf("expected applied got %v", approved["status"])
	}

	// the headcount moved with the same commit
	res, openings := doJSON(t, http.MethodGet, srv.URL+"/v1/openings", hr, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list openings: %d", res.StatusCode)
	}
	item := openings["items"].([]any)[0].(map[string]any)
	if int(item["headcount_required"].(float64)) != 3 {
		t.Fatalf("headcount = %v want 3", item["headcount_required"])
	}

	// approving twice conflicts
	res, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/opening-requests/%d/approve", srv.URL, requestID), hr, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("second approve: expected 409 got %d", res.StatusCode)
	}

	// reject path needs a reason
	res, second := doJSON(t, http.MethodPost, srv.URL+"/v1/opening-requests", viewer, map[string]any{
		"title": "Data Engineer", "headcount_delta": 1,
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("second raise: %d", res.StatusCode)
	}
	secondID := int64(second["id"].(float64))
	res, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/opening-requests/%d/reject", srv.URL, secondID), hr, map[string]any{})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("reject without reason: expected 400 got %d", res.StatusCode)
	}
	res, rejected := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/opening-requests/%d/reject", srv.URL, secondID), hr, map[string]any{"rejected_reason": "no budget"})
	if res.StatusCode != http.StatusOK || rejected["status"] != "rejected" {
		t.Fatalf("reject: %d %v", res.StatusCode, rejected)
	}

	// superadmin override and delete
	res, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/opening-requests/%d/status", srv.URL, secondID), hr, map[string]any{"status": "pending_hr_approval"})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("hr override: expected 403 got %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/opening-requests/%d/status", srv.URL, secondID), admin, map[string]any{"status": "pending_hr_approval"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("admin override: expected 200 got %d", res.StatusCode)
	}
	res, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/v1/opening-requests/%d", srv.URL, secondID), admin, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d", res.StatusCode)
	}

	// opening toggle is HR-or-superadmin
	res, toggled := doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/openings/%d/active", srv.URL, openingID), hr, map[string]any{"is_active": false})
	if res.StatusCode != http.StatusOK || toggled["is_active"] != false {
		t.Fatalf("toggle: %d %v", res.StatusCode, toggled)
	}
}

func TestOfferApprovalOverHTTP(t *testing.T) {
	srv, cleanup := setupAPI(t)
	defer cleanup()

	hr := signup(t, srv, "hr@example.com", map[string]any{"role_id": 5})

	res, cand := doJSON(t, http.MethodPost, srv.URL+"/v1/candidates", hr, map[string]any{"name": "Asha", "email": "asha@example.com"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create candidate: %d", res.StatusCode)
	}
	candidateID := int64(cand["id"].(float64))

	res, offer := doJSON(t, http.MethodPost, srv.URL+"/v1/offers", hr, map[string]any{
		"candidate_id": candidateID, "designation_title": "Engineer", "gross_ctc_annual": 2400000, "currency": "INR",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create offer: %d (%v)", res.StatusCode, offer)
	}
	if offer["offer_status"] != "draft" {
		t.Fatalf("expected draft got %v", offer["offer_status"])
	}
	offerID := int64(offer["id"].(float64))

	res, pending := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/offers/%d/request-approval", srv.URL, offerID), hr, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("request approval: %d (%v)", res.StatusCode, pending)
	}
	token, _ := pending["approval_token"].(string)
	if token == "" {
		t.Fatalf("approval token missing from response: %v", pending)
	}

	// the emailed link needs no session, only the token
	res, decided := doJSON(t, http.MethodPost, srv.URL+"/v1/offer-approvals/"+token, "", map[string]any{"decision": "approved"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("decide: %d (%v)", res.StatusCode, decided)
	}
	if decided["offer_status"] != "approved" || decided["approval_decision"] != "approved" {
		t.Fatalf("unexpected decision state: %v", decided)
	}

	// replay with the opposite decision changes nothing
	res, replay := doJSON(t, http.MethodPost, srv.URL+"/v1/offer-approvals/"+token, "", map[string]any{"decision": "rejected", "reason": "no"})
	if res.StatusCode != http.StatusOK || replay["offer_status"] != "approved" {
		t.Fatalf("replay must return the stored decision: %d %v", res.StatusCode, replay)
	}

	// garbage token fails closed
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/offer-approvals/not-a-token", "", map[string]any{"decision": "approved"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401 got %d", res.StatusCode)
	}

	res, sent := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/offers/%d/send", srv.URL, offerID), hr, nil)
	if res.StatusCode != http.StatusOK || sent["offer_status"] != "sent" {
		t.Fatalf("send: %d %v", res.StatusCode, sent)
	}

	// the dashboard sees the outstanding offer
	res, counts := doJSON(t, http.MethodGet, srv.URL+"/v1/dashboard/attention", hr, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: %d", res.StatusCode)
	}
	if int(counts["offers_awaiting_response"].(float64)) != 1 {
		t.Fatalf("offers_awaiting_response = %v want 1", counts["offers_awaiting_response"])
	}
}
