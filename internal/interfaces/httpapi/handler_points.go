package httpapi

import (
	"net/http"
)

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	rows, err := h.pointsService.Standings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]standingDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, standingToDTO(ctx, row))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) AuditTeamPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AuditTeamPoints")
	defer span.End()

	teamID := r.PathValue("teamID")
	report, err := h.pointsService.Audit(ctx, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "points audit failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RefreshStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshStandings")
	defer span.End()

	rows, err := h.pointsService.RefreshStandings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]standingDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, standingToDTO(ctx, row))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}
