package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	teamID := strings.TrimSpace(r.URL.Query().Get("team_id"))

	var (
		items []match.Match
		err   error
	)
	switch {
	case teamID != "":
		items, err = h.matchService.ListByTeam(ctx, teamID)
	case status != "":
		items, err = h.matchService.ListByStatus(ctx, status)
	default:
		items, err = h.matchService.List(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "status", status, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(ctx, items))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	item, err := h.matchService.GetByID(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, item))
}

func (h *Handler) ScheduleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req scheduleMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input, err := toScheduleInput(req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Schedule(ctx, principal, input)
	if err != nil {
		h.logger.WarnContext(ctx, "schedule match failed", "team1_id", req.Team1ID, "team2_id", req.Team2ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(ctx, item))
}

func (h *Handler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req recordMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	scheduleInput, err := toScheduleInput(req.scheduleMatchRequest)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	playedAt, err := parseOptionalTime("played_at", req.PlayedAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Record(ctx, principal, usecase.RecordMatchInput{
		ScheduleMatchInput: scheduleInput,
		Sets:               toSetScores(req.Sets),
		Winner:             req.Winner,
		PlayedAt:           playedAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record match failed", "team1_id", req.Team1ID, "team2_id", req.Team2ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(ctx, item))
}

func (h *Handler) CompleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req completeMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	playedAt, err := parseOptionalTime("played_at", req.PlayedAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Complete(ctx, principal, usecase.CompleteMatchInput{
		MatchID:  r.PathValue("matchID"),
		Sets:     toSetScores(req.Sets),
		Winner:   req.Winner,
		PlayedAt: playedAt,
		Notes:    req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "complete match failed", "match_id", r.PathValue("matchID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, item))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	scheduledAt, err := parseOptionalTime("scheduled_at", req.ScheduledAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Update(ctx, principal, usecase.UpdateMatchInput{
		MatchID:     r.PathValue("matchID"),
		ScheduledAt: scheduledAt,
		Level:       req.Level,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", r.PathValue("matchID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, item))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	if err := h.matchService.Delete(ctx, principal, r.PathValue("matchID")); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", r.PathValue("matchID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func toScheduleInput(req scheduleMatchRequest) (usecase.ScheduleMatchInput, error) {
	scheduledAt, err := parseOptionalTime("scheduled_at", req.ScheduledAt)
	if err != nil {
		return usecase.ScheduleMatchInput{}, err
	}

	return usecase.ScheduleMatchInput{
		Team1ID:        req.Team1ID,
		Team2ID:        req.Team2ID,
		Team1PlayerIDs: req.Team1PlayerIDs,
		Team2PlayerIDs: req.Team2PlayerIDs,
		MatchType:      req.MatchType,
		Level:          req.Level,
		ScheduledAt:    scheduledAt,
		Notes:          req.Notes,
	}, nil
}
