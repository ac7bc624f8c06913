package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/baselinehq/tennis-league/internal/domain/challenge"
	"github.com/baselinehq/tennis-league/internal/usecase"
)

func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChallenges")
	defer span.End()

	status := strings.TrimSpace(r.URL.Query().Get("status"))

	var (
		items []challenge.Challenge
		err   error
	)
	if status != "" {
		items, err = h.challengeService.ListByStatus(ctx, status)
	} else {
		items, err = h.challengeService.List(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "list challenges failed", "status", status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengesToDTO(ctx, items))
}

func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChallenge")
	defer span.End()

	item, err := h.challengeService.GetByID(ctx, r.PathValue("challengeID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(ctx, item))
}

func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChallenge")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createChallengeRequest
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

	proposedDate, err := parseOptionalTime("proposed_date", req.ProposedDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.challengeService.Create(ctx, principal, usecase.CreateChallengeInput{
		TeamID:       req.TeamID,
		PlayerIDs:    req.PlayerIDs,
		MatchType:    req.MatchType,
		Level:        req.Level,
		ProposedDate: proposedDate,
		Notes:        req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create challenge failed", "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, challengeToDTO(ctx, item))
}

func (h *Handler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptChallenge")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req acceptChallengeRequest
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

	acceptedDate, err := parseOptionalTime("accepted_date", req.AcceptedDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.challengeService.Accept(ctx, principal, usecase.AcceptChallengeInput{
		ChallengeID:  r.PathValue("challengeID"),
		TeamID:       req.TeamID,
		PlayerIDs:    req.PlayerIDs,
		AcceptedDate: acceptedDate,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "accept challenge failed", "challenge_id", r.PathValue("challengeID"), "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := acceptChallengeDTO{
		Challenge:            challengeToDTO(ctx, result.Challenge),
		MatchCreationWarning: result.MatchCreationWarning,
	}
	if result.Match != nil {
		created := matchToDTO(ctx, *result.Match)
		dto.Match = &created
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateChallenge")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateChallengeRequest
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

	proposedDate, err := parseOptionalTime("proposed_date", req.ProposedDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.challengeService.Update(ctx, principal, usecase.UpdateChallengeInput{
		ChallengeID:  r.PathValue("challengeID"),
		PlayerIDs:    req.PlayerIDs,
		Level:        req.Level,
		ProposedDate: proposedDate,
		Notes:        req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update challenge failed", "challenge_id", r.PathValue("challengeID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(ctx, item))
}

func (h *Handler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteChallenge")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	if err := h.challengeService.Delete(ctx, principal, r.PathValue("challengeID")); err != nil {
		h.logger.WarnContext(ctx, "delete challenge failed", "challenge_id", r.PathValue("challengeID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) EnsureChallengeMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnsureChallengeMatch")
	defer span.End()

	var req ensureMatchRequest
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

	item, created, err := h.challengeService.EnsurePendingMatch(ctx, req.ChallengeID)
	if err != nil {
		h.logger.WarnContext(ctx, "ensure pending match failed", "challenge_id", req.ChallengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ensureMatchDTO{
		Match:   matchToDTO(ctx, item),
		Created: created,
	})
}
