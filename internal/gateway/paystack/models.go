package paystack

import (
	"encoding/json"
	"fmt"
	"time"
)

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError is a well-formed negative answer from the gateway: a 4xx status or
// a 2xx body with status=false. Message is safe to show the applicant.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack rejected request (%d): %s", e.StatusCode, e.Message)
}

// SubaccountRequest creates or updates a settlement subaccount.
type SubaccountRequest struct {
	BusinessName     string  `json:"business_name"`
	SettlementBank   string  `json:"settlement_bank"`
	AccountNumber    string  `json:"account_number"`
	PercentageCharge float64 `json:"percentage_charge"`
	Description      string  `json:"description,omitempty"`
	PrimaryEmail     string  `json:"primary_contact_email,omitempty"`
	PrimaryName      string  `json:"primary_contact_name,omitempty"`
}

type Subaccount struct {
	ID               int64   `json:"id"`
	Code             string  `json:"subaccount_code"`
	BusinessName     string  `json:"business_name"`
	SettlementBank   string  `json:"settlement_bank"`
	AccountNumber    string  `json:"account_number"`
	AccountName      string  `json:"account_name"`
	PercentageCharge float64 `json:"percentage_charge"`
	Active           bool    `json:"active"`
}

type Bank struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Code     string `json:"code"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	Active   bool   `json:"active"`
}

type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankID        int64  `json:"bank_id"`
}

// Transaction is a verified charge. Amount is in minor units (kobo).
type Transaction struct {
	ID        int64     `json:"id"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
	// Subaccount is an object when the charge was split and {} or null otherwise.
	Subaccount json.RawMessage `json:"subaccount"`
}

const TransactionSuccess = "success"

// SubaccountCode extracts the split subaccount code, if any.
func (t Transaction) SubaccountCode() string {
	if len(t.Subaccount) == 0 {
		return ""
	}
	var sub struct {
		Code string `json:"subaccount_code"`
	}
	if err := json.Unmarshal(t.Subaccount, &sub); err != nil {
		return ""
	}
	return sub.Code
}

// MajorAmount converts the minor-unit amount to currency units.
func (t Transaction) MajorAmount() float64 {
	return float64(t.Amount) / 100
}
