package httpapi

import (
	"fmt"
	"net/http"

	"github.com/baselinehq/tennis-league/internal/usecase"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teamRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		dtos = append(dtos, teamToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	item, found, err := h.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: team %s", usecase.ErrNotFound, teamID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(ctx, item))
}

func (h *Handler) ListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamPlayers")
	defer span.End()

	teamID := r.PathValue("teamID")
	if _, found, err := h.teamRepo.GetByID(ctx, teamID); err != nil {
		writeError(ctx, w, err)
		return
	} else if !found {
		writeError(ctx, w, fmt.Errorf("%w: team %s", usecase.ErrNotFound, teamID))
		return
	}

	players, err := h.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list team players failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]playerDTO, 0, len(players))
	for _, item := range players {
		dtos = append(dtos, playerToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.playerRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]playerDTO, 0, len(players))
	for _, item := range players {
		dtos = append(dtos, playerToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	item, found, err := h.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: player %s", usecase.ErrNotFound, playerID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(ctx, item))
}
