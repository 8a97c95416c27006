package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"instructorhub/internal/onboarding/handler/mocks"
	"instructorhub/internal/onboarding/models"
	"instructorhub/internal/platform/logger"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	h := New(svc, logger.Discard())
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return svc, r
}

func TestIssueSetupToken(t *testing.T) {
	expires := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	t.Run("returns token and url", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Issue(gomock.Any(), models.IssueRequest{Email: "a@b.com", DisplayName: "Jane"}).
			Return(&models.IssuedCredential{Token: "tok", RedemptionURL: "https://x.test/setup?token=tok", ExpiresAt: expires}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/issue-setup-token",
			map[string]string{"applicantEmail": "a@b.com", "applicantName": " Jane "}))

		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[issueResponse](t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, "tok", resp.SetupToken)
		assert.Equal(t, "https://x.test/setup?token=tok", resp.SetupURL)
		assert.True(t, expires.Equal(resp.ExpiresAt))
	})

	t.Run("persistence failure is a 500 without detail", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Issue(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(context.Canceled, dErrors.CodeInternal, "failed to persist setup credential"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/issue-setup-token",
			map[string]string{"applicantEmail": "a@b.com"}))
		testutil.AssertFailure(t, rr, http.StatusInternalServerError, "Internal server error")
	})

	t.Run("wrong method is 405", func(t *testing.T) {
		_, router := newRouter(t)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/issue-setup-token"))
		testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
	})
}

func TestValidateSetupToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Validate(gomock.Any(), "tok").
			Return(&models.ValidationResult{Valid: true, Email: "a@b.com", DisplayName: "Jane", Token: "tok"}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/validate-setup-token",
			map[string]string{"token": "tok"}))

		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[validateResponse](t, rr)
		assert.Equal(t, validateResponse{Valid: true, UserEmail: "a@b.com", UserName: "Jane", Token: "tok"}, *resp)
	})

	t.Run("business negative is 200", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Validate(gomock.Any(), "old").
			Return(&models.ValidationResult{Valid: false, Reason: models.ReasonExpired}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/validate-setup-token",
			map[string]string{"token": "old"}))

		testutil.AssertNotRedeemable(t, rr, models.ReasonExpired)
		assert.JSONEq(t, `{"valid":false,"reason":"Token expired"}`, string(testutil.ReadBody(t, rr)))
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		_, router := newRouter(t)
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/validate-setup-token", "{"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertJSONContains(t, rr, "valid", false)
	})
}

func TestCompleteOnboarding(t *testing.T) {
	body := map[string]string{
		"token":          "tok",
		"bank_code":      "057",
		"account_number": "0123456789",
		"account_name":   "Jane Doe",
		"business_name":  "Jane Teaches",
	}

	t.Run("token mode success", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().CompleteOnboarding(gomock.Any(), models.CompletionRequest{
			Token: "tok",
			Details: models.PayoutDetails{
				BankCode:      "057",
				AccountNumber: "0123456789",
				AccountName:   "Jane Doe",
				BusinessName:  "Jane Teaches",
			},
		}).Return(&models.CompletionResult{SubjectID: "s1", SubaccountCode: "ACCT_x"}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/complete-onboarding", body))

		testutil.AssertStatusOK(t, rr)
		assert.JSONEq(t, `{"success":true,"subaccount_code":"ACCT_x"}`, string(testutil.ReadBody(t, rr)))
	})

	t.Run("bearer header is forwarded in session mode", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().CompleteOnboarding(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
				assert.Equal(t, "session-jwt", req.Bearer)
				assert.Empty(t, req.Token)
				return &models.CompletionResult{SubaccountCode: "ACCT_s"}, nil
			})

		sessionBody := map[string]string{"bank_code": "057", "account_number": "0123456789", "account_name": "J", "business_name": "B"}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/complete-onboarding", sessionBody)
		req.Header.Set("Authorization", "Bearer session-jwt")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
	})

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"used token", dErrors.New(dErrors.CodeInvalidCredential, models.ReasonUsed), http.StatusBadRequest, "Token already used"},
		{"missing auth", dErrors.New(dErrors.CodeUnauthorized, "Authorization required"), http.StatusUnauthorized, "Authorization required"},
		{"gateway negative", dErrors.New(dErrors.CodePayoutProvisioning, "Invalid bank code"), http.StatusBadRequest, "Invalid bank code"},
		{"account already being onboarded", dErrors.New(dErrors.CodeConflict, "Onboarding already in progress for this account"), http.StatusConflict, "Onboarding already in progress for this account"},
		{"store deadline", dErrors.New(dErrors.CodeTimeout, "Storage timed out"), http.StatusGatewayTimeout, "Upstream service timed out"},
		{"partial failure hides detail", dErrors.Wrap(&models.PartialOnboardingError{SubjectID: "s1", SubaccountCode: "ACCT_x", Stage: models.StageClaims},
			dErrors.CodeInternal, "Payout account created but account update failed"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().CompleteOnboarding(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/complete-onboarding", body))
			testutil.AssertFailure(t, rr, tc.status, tc.message)
			assert.False(t, strings.Contains(rr.Body.String(), "ACCT_x"))
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	t.Run("reconcile lists inconsistencies", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Reconcile(gomock.Any()).Return([]models.Inconsistency{
			{SubjectID: "s1", Kind: models.KindMissingDocuments, ClaimsCode: "ACCT_1"},
		}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/onboarding/reconcile"))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[reconcileResponse](t, rr)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, models.KindMissingDocuments, resp.Inconsistencies[0].Kind)
	})

	t.Run("empty reconcile is an empty list", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Reconcile(gomock.Any()).Return(nil, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/onboarding/reconcile"))
		assert.JSONEq(t, `{"count":0,"inconsistencies":[]}`, string(testutil.ReadBody(t, rr)))
	})

	t.Run("repair", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Repair(gomock.Any(), models.RepairRequest{SubjectID: "s1"}).
			Return(&models.RepairResult{SubjectID: "s1", SubaccountCode: "ACCT_1", Applied: []string{models.RepairProfile}}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/admin/onboarding/repair",
			map[string]string{"subject_id": "s1"}))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "subaccount_code", "ACCT_1")
	})

	t.Run("repair with a named subaccount", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Repair(gomock.Any(), models.RepairRequest{SubjectID: "s2", SubaccountCode: "ACCT_2"}).
			Return(&models.RepairResult{SubjectID: "s2", SubaccountCode: "ACCT_2", Applied: []string{models.RepairDestination}}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/admin/onboarding/repair",
			map[string]string{"subject_id": " s2 ", "subaccount_code": "ACCT_2"}))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "subaccount_code", "ACCT_2")
	})

	t.Run("repair of unknown subject", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Repair(gomock.Any(), models.RepairRequest{SubjectID: "ghost"}).Return(nil, dErrors.New(dErrors.CodeNotFound, "account not found"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/admin/onboarding/repair",
			map[string]string{"subject_id": "ghost"}))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}
