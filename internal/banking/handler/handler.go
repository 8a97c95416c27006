// Package handler exposes bank lookups and payment verification. Responses
// keep the gateway's {status, message, data} shape the setup page expects.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"instructorhub/internal/banking/service"
	"instructorhub/internal/gateway/paystack"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/platform/httputil"
	request "instructorhub/pkg/platform/middleware/request"
)

type Service interface {
	Banks(ctx context.Context) ([]paystack.Bank, error)
	VerifyAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error)
	VerifyPayment(ctx context.Context, reference string) (*service.Payment, error)
}

type Handler struct {
	service  Service
	logger   *slog.Logger
	validate *validator.Validate
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/banks", h.handleBanks)
	r.Post("/verify-account", h.handleVerifyAccount)
	r.Post("/verify-payment", h.handleVerifyPayment)
}

type verifyAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"required,numeric,len=10"`
	BankCode      string `json:"bank_code" validate:"required,numeric"`
}

type verifyPaymentRequest struct {
	Reference string `json:"reference"`
}

type gatewayResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type paymentData struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	CustomerEmail string  `json:"customer_email"`
	Reference     string  `json:"reference"`
	Subaccount    string  `json:"subaccount,omitempty"`
}

type paymentResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Data    *paymentData `json:"data,omitempty"`
}

func (h *Handler) handleBanks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	banks, err := h.service.Banks(ctx)
	if err != nil {
		h.logFailure(ctx, "list banks failed", err)
		// The setup page renders an empty picker rather than breaking.
		httputil.WriteJSON(w, httputil.StatusFor(dErrors.CodeOf(err)), gatewayResponse{
			Status:  false,
			Message: httputil.PublicMessage(err),
			Data:    []paystack.Bank{},
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, gatewayResponse{Status: true, Message: "Banks retrieved", Data: banks})
}

func (h *Handler) handleVerifyAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req verifyAccountRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeGatewayFailure(w, err)
		return
	}
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	req.BankCode = strings.TrimSpace(req.BankCode)
	if err := h.validate.Struct(req); err != nil {
		writeGatewayFailure(w, dErrors.Wrap(err, dErrors.CodeValidation, validationMessage(err)))
		return
	}
	resolved, err := h.service.VerifyAccount(ctx, req.AccountNumber, req.BankCode)
	if err != nil {
		h.logFailure(ctx, "verify account failed", err)
		writeGatewayFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, gatewayResponse{Status: true, Message: "Account number resolved", Data: resolved})
}

func (h *Handler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req verifyPaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, paymentResponse{Status: "failed", Message: dErrors.MessageOf(err)})
		return
	}
	payment, err := h.service.VerifyPayment(ctx, req.Reference)
	if err != nil {
		h.logFailure(ctx, "verify payment failed", err)
		status := httputil.StatusFor(dErrors.CodeOf(err))
		label := "failed"
		if status >= http.StatusInternalServerError {
			label = "error"
		}
		httputil.WriteJSON(w, status, paymentResponse{Status: label, Message: httputil.PublicMessage(err)})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, paymentResponse{
		Status: "success",
		Data: &paymentData{
			Amount:        payment.Amount,
			Currency:      payment.Currency,
			CustomerEmail: payment.CustomerEmail,
			Reference:     payment.Reference,
			Subaccount:    payment.SubaccountCode,
		},
	})
}

func writeGatewayFailure(w http.ResponseWriter, err error) {
	httputil.WriteJSON(w, httputil.StatusFor(dErrors.CodeOf(err)), gatewayResponse{
		Status:  false,
		Message: httputil.PublicMessage(err),
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		if field == "AccountNumber" {
			return "account_number must be a 10-digit number"
		}
		return "bank_code is required"
	}
	return "invalid request"
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg, "request_id", request.GetRequestID(ctx), "error", err)
}
