package httpapi

import (
	"context"
	"net/http"

	"github.com/baselinehq/tennis-league/internal/usecase"
)

func (h *Handler) RunMatchMigration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMatchMigration")
	defer span.End()

	report, err := h.migrationService.MigrateMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "match migration failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logMigrationReport(ctx, report)
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunCreatePendingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCreatePendingMatches")
	defer span.End()

	report, err := h.migrationService.CreatePendingMatchesFromChallenges(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "create pending matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logMigrationReport(ctx, report)
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunForceRecreatePendingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunForceRecreatePendingMatches")
	defer span.End()

	report, err := h.migrationService.ForceRecreatePendingMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "force recreate pending matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logMigrationReport(ctx, report)
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunReMigration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReMigration")
	defer span.End()

	report, err := h.migrationService.ReMigrateFromBackup(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "re-migration from backup failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logMigrationReport(ctx, report)
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunFullMigration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFullMigration")
	defer span.End()

	reports, err := h.migrationService.FullMigration(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "full migration failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	for _, report := range reports {
		h.logMigrationReport(ctx, report)
	}
	writeSuccess(ctx, w, http.StatusOK, reports)
}

func (h *Handler) RunFixChallengeIDs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFixChallengeIDs")
	defer span.End()

	report, err := h.migrationService.FixChallengeIDField(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "challenge id backfill failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logMigrationReport(ctx, report)
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunEnsureCreatedAt(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunEnsureCreatedAt")
	defer span.End()

	report, err := h.migrationService.EnsureCreatedAtField(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "created_at backfill failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logMigrationReport(ctx, report)
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) VerifyMigration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyMigration")
	defer span.End()

	report, err := h.migrationService.VerifyMigration(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "migration verification failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) logMigrationReport(ctx context.Context, report usecase.MigrationReport) {
	h.logger.InfoContext(ctx, "migration operation finished",
		"operation", report.Operation,
		"total", report.Total,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"errored", report.Errored,
	)
}
