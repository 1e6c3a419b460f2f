package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/usecase"
)

type Handler struct {
	ingestService  *usecase.IngestService
	resolveService *usecase.ResolveService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	ingestService *usecase.IngestService,
	resolveService *usecase.ResolveService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ingestService:  ingestService,
		resolveService: resolveService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
