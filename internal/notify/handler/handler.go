// Package handler exposes the Decision Notifier over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"instructorhub/internal/notify/service"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/httputil"
	request "instructorhub/pkg/platform/middleware/request"
)

type Service interface {
	NotifyApproval(ctx context.Context, applicant service.Applicant) (*service.Outcome, error)
	NotifyRejection(ctx context.Context, applicant service.Applicant, reason string) (*service.Outcome, error)
	ResendSetupLink(ctx context.Context, applicant service.Applicant) (*service.Outcome, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/notify-decision/approve", h.handleApprove)
	r.Post("/notify-decision/reject", h.handleReject)
}

// RegisterAdmin mounts the resend route. The caller guards r.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/setup-tokens/resend", h.handleResend)
}

type decisionRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Reason        string `json:"reason,omitempty"`
	ApplicationID string `json:"applicationId,omitempty"`
	SubjectID     string `json:"subjectId,omitempty"`
}

func (r *decisionRequest) applicant() service.Applicant {
	return service.Applicant{
		SubjectID:     strings.TrimSpace(r.SubjectID),
		Email:         strings.TrimSpace(r.Email),
		Name:          strings.TrimSpace(r.Name),
		ApplicationID: strings.TrimSpace(r.ApplicationID),
	}
}

type resendRequest struct {
	ApplicantEmail string `json:"applicantEmail"`
	ApplicantName  string `json:"applicantName"`
}

type decisionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type resendResponse struct {
	Success   bool      `json:"success"`
	SetupURL  string    `json:"setupUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
	Reused    bool      `json:"reused"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req decisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if _, err := h.service.NotifyApproval(ctx, req.applicant()); err != nil {
		h.logFailure(ctx, "approval notification failed", err)
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, decisionResponse{Success: true, Message: "Approval email sent successfully"})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req decisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	if _, err := h.service.NotifyRejection(ctx, req.applicant(), strings.TrimSpace(req.Reason)); err != nil {
		h.logFailure(ctx, "rejection notification failed", err)
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, decisionResponse{Success: true, Message: "Rejection email sent successfully"})
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req resendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	outcome, err := h.service.ResendSetupLink(ctx, service.Applicant{
		Email: strings.TrimSpace(req.ApplicantEmail),
		Name:  strings.TrimSpace(req.ApplicantName),
	})
	if err != nil {
		h.logFailure(ctx, "resend setup link failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resendResponse{
		Success:   true,
		SetupURL:  outcome.Credential.RedemptionURL,
		ExpiresAt: outcome.Credential.ExpiresAt,
		Reused:    outcome.Reused,
	})
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg, "request_id", request.GetRequestID(ctx), "error", err)
}
