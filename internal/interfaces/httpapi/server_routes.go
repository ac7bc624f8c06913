package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/players", handler.ListTeamPlayers)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/challenges", handler.ListChallenges)
	mux.HandleFunc("GET /v1/challenges/{challengeID}", handler.GetChallenge)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/standings/audit/{teamID}", handler.AuditTeamPoints)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/challenges", RequireAuth(verifier, http.HandlerFunc(handler.CreateChallenge)))
	mux.Handle("POST /v1/challenges/{challengeID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptChallenge)))
	mux.Handle("PUT /v1/challenges/{challengeID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateChallenge)))
	mux.Handle("DELETE /v1/challenges/{challengeID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteChallenge)))
	mux.Handle("POST /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.ScheduleMatch)))
	mux.Handle("POST /v1/matches/record", RequireAuth(verifier, http.HandlerFunc(handler.RecordMatch)))
	mux.Handle("POST /v1/matches/{matchID}/complete", RequireAuth(verifier, http.HandlerFunc(handler.CompleteMatch)))
	mux.Handle("PUT /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMatch)))
	mux.Handle("DELETE /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteMatch)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/migration/matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMatchMigration)))
	mux.Handle("POST /v1/internal/migration/pending-matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCreatePendingMatches)))
	mux.Handle("POST /v1/internal/migration/pending-matches/force", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunForceRecreatePendingMatches)))
	mux.Handle("POST /v1/internal/migration/re-migrate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReMigration)))
	mux.Handle("POST /v1/internal/migration/full", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFullMigration)))
	mux.Handle("POST /v1/internal/migration/fix-challenge-ids", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFixChallengeIDs)))
	mux.Handle("POST /v1/internal/migration/ensure-created-at", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunEnsureCreatedAt)))
	mux.Handle("GET /v1/internal/migration/verify", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.VerifyMigration)))
	mux.Handle("POST /v1/internal/jobs/refresh-standings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshStandings)))
	mux.Handle("POST /v1/internal/jobs/ensure-match", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.EnsureChallengeMatch)))
}
