package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"instructorhub/internal/onboarding/models"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/httputil"
	authmw "instructorhub/pkg/platform/middleware/auth"
	request "instructorhub/pkg/platform/middleware/request"
)

// Service is the onboarding surface exposed over HTTP.
type Service interface {
	Issue(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, error)
	Validate(ctx context.Context, token string) (*models.ValidationResult, error)
	CompleteOnboarding(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error)
	Reconcile(ctx context.Context) ([]models.Inconsistency, error)
	Repair(ctx context.Context, req models.RepairRequest) (*models.RepairResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public credential and onboarding routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/issue-setup-token", h.handleIssue)
	r.Post("/validate-setup-token", h.handleValidate)
	r.Post("/complete-onboarding", h.handleComplete)
}

// RegisterAdmin mounts the reconciliation routes. The caller guards r.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/onboarding/reconcile", h.handleReconcile)
	r.Post("/admin/onboarding/repair", h.handleRepair)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req issueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	issued, err := h.service.Issue(ctx, req.toModel())
	if err != nil {
		h.logFailure(ctx, "failed to issue setup credential", requestID, err)
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issueResponse{
		Success:    true,
		SetupToken: issued.Token,
		SetupURL:   issued.RedemptionURL,
		ExpiresAt:  issued.ExpiresAt,
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req validateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	result, err := h.service.Validate(ctx, req.Token)
	if err != nil {
		h.logFailure(ctx, "failed to validate setup credential", requestID, err)
		writeInvalid(w, err)
		return
	}
	if !result.Valid {
		httputil.WriteJSON(w, http.StatusOK, validateResponse{Valid: false, Reason: result.Reason})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validateResponse{
		Valid:     true,
		UserEmail: result.Email,
		UserName:  result.DisplayName,
		Token:     result.Token,
	})
}

// writeInvalid keeps the validator's {valid:false, reason} shape on errors.
func writeInvalid(w http.ResponseWriter, err error) {
	httputil.WriteJSON(w, httputil.StatusFor(dErrors.CodeOf(err)), validateResponse{
		Valid:  false,
		Reason: httputil.PublicMessage(err),
	})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	var req completeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	bearer := authmw.GetBearer(ctx)
	if bearer == "" {
		bearer, _ = authmw.BearerFromRequest(r)
	}

	result, err := h.service.CompleteOnboarding(ctx, req.toModel(bearer))
	if err != nil {
		h.logFailure(ctx, "onboarding completion failed", requestID, err)
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, completeResponse{Success: true, SubaccountCode: result.SubaccountCode})
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	found, err := h.service.Reconcile(ctx)
	if err != nil {
		h.logFailure(ctx, "reconciliation failed", request.GetRequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	if found == nil {
		found = []models.Inconsistency{}
	}
	httputil.WriteJSON(w, http.StatusOK, reconcileResponse{Count: len(found), Inconsistencies: found})
}

func (h *Handler) handleRepair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req repairRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.Repair(ctx, req.toModel())
	if err != nil {
		h.logFailure(ctx, "repair failed", request.GetRequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// logFailure logs caller mistakes at warn and server faults at error.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
}
