package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/baselinehq/tennis-league/internal/domain/player"
	"github.com/baselinehq/tennis-league/internal/domain/team"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
	"github.com/baselinehq/tennis-league/internal/usecase"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	challengeService *usecase.ChallengeService
	matchService     *usecase.MatchService
	migrationService *usecase.MigrationService
	pointsService    *usecase.PointsService
	teamRepo         team.Repository
	playerRepo       player.Repository
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	challengeService *usecase.ChallengeService,
	matchService *usecase.MatchService,
	migrationService *usecase.MigrationService,
	pointsService *usecase.PointsService,
	teamRepo team.Repository,
	playerRepo player.Repository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		challengeService: challengeService,
		matchService:     matchService,
		migrationService: migrationService,
		pointsService:    pointsService,
		teamRepo:         teamRepo,
		playerRepo:       playerRepo,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
