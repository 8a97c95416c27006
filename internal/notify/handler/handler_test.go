package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"instructorhub/internal/notify/handler/mocks"
	"instructorhub/internal/notify/service"
	"instructorhub/internal/onboarding/models"
	"instructorhub/internal/platform/logger"
	dErrors "instructorhub/pkg/domain-errors"
	"instructorhub/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	h := New(svc, logger.Discard())
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return svc, r
}

func TestApprove(t *testing.T) {
	testutil.Given(t, "an approval for a new instructor", func(t *testing.T) {
		body := map[string]string{"email": "jane@example.com", "name": "Jane", "applicationId": "app-1"}

		testutil.When(t, "the email is delivered", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().NotifyApproval(gomock.Any(), service.Applicant{Email: "jane@example.com", Name: "Jane", ApplicationID: "app-1"}).
				Return(&service.Outcome{Decision: service.DecisionApproved, Delivered: true}, nil)

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/notify-decision/approve", body))
			testutil.Then(t, "success is reported", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "success", true)
			})
		})

		testutil.When(t, "the relay fails", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().NotifyApproval(gomock.Any(), gomock.Any()).
				Return(&service.Outcome{Delivered: false}, dErrors.New(dErrors.CodeDeliveryFailed, "Failed to send approval email"))

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/notify-decision/approve", body))
			testutil.Then(t, "a 500 delivery failure is reported", func(t *testing.T) {
				testutil.AssertFailure(t, rr, http.StatusInternalServerError, "Notification delivery failed")
			})
		})
	})
}

func TestReject(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().NotifyRejection(gomock.Any(), service.Applicant{Email: "joe@example.com", Name: "Joe", ApplicationID: "app-2"}, "Incomplete portfolio").
		Return(&service.Outcome{Decision: service.DecisionRejected, Delivered: true}, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/notify-decision/reject", map[string]string{
		"email": "joe@example.com", "name": "Joe", "reason": " Incomplete portfolio ", "applicationId": "app-2",
	}))

	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"success":true,"message":"Rejection email sent successfully"}`, string(testutil.ReadBody(t, rr)))
}

func TestResend(t *testing.T) {
	expires := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	svc, router := newRouter(t)
	svc.EXPECT().ResendSetupLink(gomock.Any(), service.Applicant{Email: "jane@example.com", Name: "Jane"}).
		Return(&service.Outcome{
			Decision:   service.DecisionApproved,
			Credential: &models.IssuedCredential{Token: "tok", RedemptionURL: "https://x.test/setup?token=tok", ExpiresAt: expires},
			Reused:     true,
			Delivered:  true,
		}, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/admin/setup-tokens/resend",
		map[string]string{"applicantEmail": "jane@example.com", "applicantName": "Jane"}))

	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[resendResponse](t, rr)
	assert.True(t, resp.Reused)
	assert.Equal(t, "https://x.test/setup?token=tok", resp.SetupURL)
}
