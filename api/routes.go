package api

import (
	"context"

	"log/slog"

	"github.com/gorilla/mux"

	"github.com/slrhq/hireops/internal/approvals"
	"github.com/slrhq/hireops/internal/config"
	"github.com/slrhq/hireops/internal/db"
	"github.com/slrhq/hireops/internal/intake"
	"github.com/slrhq/hireops/internal/notify"
	"github.com/slrhq/hireops/internal/repository/sqlite"
)

func SetupRoutes(ctx context.Context, cfg *config.Config, version, buildTime string, database *db.DB, queue notify.Enqueuer, logger *slog.Logger) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, logger)

	emitter := notify.New(queue, logger)
	loader, err := intake.NewLoader(ctx, repo)
	if err != nil {
		return nil, err
	}
	intakeSvc := intake.NewService(repo, repo, emitter, logger)
	requestWF := approvals.NewOpeningRequests(repo, repo, repo, emitter, logger)
	offerWF := approvals.NewOffers(repo, repo, emitter, cfg.OfferTokenTTL, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	applyHandler := NewApplyHandler(intakeSvc, loader)
	candidatesHandler := NewCandidatesHandler(repo, repo, intakeSvc, emitter)
	openingsHandler := NewOpeningsHandler(repo, repo, requestWF)
	offersHandler := NewOffersHandler(repo, offerWF)
	dashboardHandler := NewDashboardHandler(repo, repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/apply", applyHandler.Apply).Methods("POST")
	// token-authenticated, no session: the emailed approval link posts here
	r.HandleFunc("/v1/offer-approvals/{token}", offersHandler.Decide).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Candidate endpoints
	apiV1.HandleFunc("/candidates", candidatesHandler.ListCandidates).Methods("GET")
	apiV1.HandleFunc("/candidates", candidatesHandler.CreateCandidate).Methods("POST")
	apiV1.HandleFunc("/candidates/{id}", candidatesHandler.GetCandidate).Methods("GET")
	apiV1.HandleFunc("/candidates/{id}/stage", candidatesHandler.AdvanceStage).Methods("POST")
	apiV1.HandleFunc("/candidates/{id}/comments", candidatesHandler.CreateComment).Methods("POST")
	apiV1.HandleFunc("/candidates/{id}/comments", candidatesHandler.ListComments).Methods("GET")
	apiV1.HandleFunc("/candidates/{id}/caf/sent", candidatesHandler.MarkCAFSent).Methods("POST")
	apiV1.HandleFunc("/candidates/{id}/caf/submitted", candidatesHandler.SubmitCAF).Methods("POST")
	apiV1.HandleFunc("/candidates/{id}/review-flag", candidatesHandler.SetReviewFlag).Methods("PUT")

	// Opening endpoints
	apiV1.HandleFunc("/openings", openingsHandler.ListOpenings).Methods("GET")
	apiV1.HandleFunc("/openings", openingsHandler.CreateOpening).Methods("POST")
	apiV1.HandleFunc("/openings/{id}/active", openingsHandler.ToggleOpening).Methods("PUT")

	// Opening request workflow
	apiV1.HandleFunc("/opening-requests", openingsHandler.ListRequests).Methods("GET")
	apiV1.HandleFunc("/opening-requests", openingsHandler.RaiseRequest).Methods("POST")
	apiV1.HandleFunc("/opening-requests/{id}/approve", openingsHandler.ApproveRequest).Methods("POST")
	apiV1.HandleFunc("/opening-requests/{id}/reject", openingsHandler.RejectRequest).Methods("POST")
	apiV1.HandleFunc("/opening-requests/{id}/status", openingsHandler.OverrideRequest).Methods("PUT")
	apiV1.HandleFunc("/opening-requests/{id}", openingsHandler.DeleteRequest).Methods("DELETE")

	// Offer approval workflow
	apiV1.HandleFunc("/offers", offersHandler.ListOffers).Methods("GET")
	apiV1.HandleFunc("/offers", offersHandler.CreateOffer).Methods("POST")
	apiV1.HandleFunc("/offers/{id}", offersHandler.GetOffer).Methods("GET")
	apiV1.HandleFunc("/offers/{id}/request-approval", offersHandler.RequestApproval).Methods("POST")
	apiV1.HandleFunc("/offers/{id}/send", offersHandler.MarkSent).Methods("POST")

	// Attention dashboard
	apiV1.HandleFunc("/dashboard/attention", dashboardHandler.Attention).Methods("GET")

	return r, nil
}
