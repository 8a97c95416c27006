// Package handler exposes application intake and the admin review routes.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"instructorhub/internal/applications/models"
	"instructorhub/internal/applications/service"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/httputil"
	request "instructorhub/pkg/platform/middleware/request"
)

type Service interface {
	Submit(ctx context.Context, fields map[string]string) (*models.Application, error)
	List(ctx context.Context, status string) ([]models.Application, error)
	Notifications(ctx context.Context) ([]models.AdminNotification, error)
	Decide(ctx context.Context, id, decision, reason string) (*service.DecisionResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.handleSubmit)
}

// RegisterAdmin mounts the review routes. The caller guards r.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/applications", h.handleList)
	r.Get("/admin/notifications", h.handleNotifications)
	r.Post("/admin/applications/{id}/decision", h.handleDecide)
}

type submitResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"applicationId"`
	Message       string `json:"message"`
}

type listResponse struct {
	Count        int                  `json:"count"`
	Applications []models.Application `json:"applications"`
}

type notificationsResponse struct {
	Count         int                        `json:"count"`
	Notifications []models.AdminNotification `json:"notifications"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

type decisionResponse struct {
	Success           bool                `json:"success"`
	Application       *models.Application `json:"application"`
	Notified          bool                `json:"notified"`
	NotificationError string              `json:"notificationError,omitempty"`
	SetupURL          string              `json:"setupUrl,omitempty"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fields, err := readFields(w, r)
	if err != nil {
		httputil.WriteFailure(w, err)
		return
	}
	app, err := h.service.Submit(ctx, fields)
	if err != nil {
		h.logFailure(ctx, "application submission failed", err)
		httputil.WriteFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, submitResponse{
		Success:       true,
		ApplicationID: app.ID,
		Message:       "Application submitted successfully",
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	apps, err := h.service.List(ctx, strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		h.logFailure(ctx, "list applications failed", err)
		httputil.WriteError(w, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Count: len(apps), Applications: apps})
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feed, err := h.service.Notifications(ctx)
	if err != nil {
		h.logFailure(ctx, "list admin notifications failed", err)
		httputil.WriteError(w, err)
		return
	}
	if feed == nil {
		feed = []models.AdminNotification{}
	}
	httputil.WriteJSON(w, http.StatusOK, notificationsResponse{Count: len(feed), Notifications: feed})
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req decisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	result, err := h.service.Decide(ctx, id, strings.TrimSpace(req.Decision), strings.TrimSpace(req.Reason))
	if err != nil {
		h.logFailure(ctx, "application decision failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, decisionResponse{
		Success:           true,
		Application:       result.Application,
		Notified:          result.Notified,
		NotificationError: result.NotificationError,
		SetupURL:          result.SetupURL,
	})
}

// readFields accepts a JSON object or a url-encoded/multipart form. JSON
// values that are not strings are formatted, so {"experience": 5} maps the
// same as the form value "5".
func readFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes)
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(httputil.MaxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid form body")
		}
		fields := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		return fields, nil
	default:
		var raw map[string]any
		if err := httputil.DecodeJSON(r, &raw); err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case nil:
			case string:
				fields[k] = val
			default:
				fields[k] = fmt.Sprint(val)
			}
		}
		return fields, nil
	}
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg, "request_id", request.GetRequestID(ctx), "error", err)
}
