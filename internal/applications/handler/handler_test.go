package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"instructorhub/internal/applications/handler/mocks"
	"instructorhub/internal/applications/models"
	"instructorhub/internal/applications/service"
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

func TestSubmit(t *testing.T) {
	testutil.Given(t, "an application submission", func(t *testing.T) {
		testutil.When(t, "it arrives as JSON with a numeric field", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().Submit(gomock.Any(), map[string]string{
				"fullName":   "Ada Obi",
				"email":      "ada@example.com",
				"expertise":  "Go",
				"experience": "5",
			}).Return(&models.Application{ID: "app-1"}, nil)

			rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/applications",
				`{"fullName":"Ada Obi","email":"ada@example.com","expertise":"Go","experience":5,"portfolio":null}`))
			testutil.Then(t, "the application id is returned", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				assert.JSONEq(t, `{"success":true,"applicationId":"app-1","message":"Application submitted successfully"}`,
					string(testutil.ReadBody(t, rr)))
			})
		})

		testutil.When(t, "it arrives as a form with human labels", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().Submit(gomock.Any(), map[string]string{
				"Full Name":         "Ada Obi",
				"Email Address":     "ada@example.com",
				"Area of Expertise": "Go",
			}).Return(&models.Application{ID: "app-2"}, nil)

			rr := testutil.DoRequest(router, testutil.NewFormRequest(t, "/applications", map[string]string{
				"Full Name":         "Ada Obi",
				"Email Address":     "ada@example.com",
				"Area of Expertise": "Go",
			}))
			testutil.Then(t, "it is accepted", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
			})
			testutil.And(t, "the new application id is returned", func(t *testing.T) {
				testutil.AssertJSONContains(t, rr, "applicationId", "app-2")
			})
		})

		testutil.When(t, "required fields are missing", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
				Return(nil, dErrors.New(dErrors.CodeValidation, models.MissingFieldsMessage))

			rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/applications", `{"fullName":"Ada"}`))
			testutil.Then(t, "a 400 names the required fields", func(t *testing.T) {
				testutil.AssertFailure(t, rr, http.StatusBadRequest, models.MissingFieldsMessage)
			})
		})

		testutil.When(t, "the body is not JSON", func(t *testing.T) {
			_, router := newRouter(t)
			rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/applications", `{broken`))
			testutil.Then(t, "a 400 is returned without calling the service", func(t *testing.T) {
				testutil.AssertFailure(t, rr, http.StatusBadRequest, "invalid request body")
			})
		})
	})
}

func TestList(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().List(gomock.Any(), "pending").Return(nil, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/applications?status=pending"))

	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"count":0,"applications":[]}`, string(testutil.ReadBody(t, rr)))
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().List(gomock.Any(), "archived").
		Return(nil, dErrors.New(dErrors.CodeValidation, "status must be pending, approved or rejected"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/applications?status=archived"))

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
}

func TestNotifications(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().Notifications(gomock.Any()).Return([]models.AdminNotification{{ID: "n-1", ApplicationID: "app-1"}}, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/notifications"))

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "count", float64(1))
}

func TestDecide(t *testing.T) {
	testutil.Given(t, "a pending application", func(t *testing.T) {
		testutil.When(t, "it is approved and the email goes out", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().Decide(gomock.Any(), "app-1", "approved", "").Return(&service.DecisionResult{
				Application: &models.Application{ID: "app-1", Status: models.StatusApproved},
				Notified:    true,
				SetupURL:    "https://village.test/setup?token=t",
			}, nil)

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/app-1/decision",
				map[string]string{"decision": "approved"}))
			testutil.Then(t, "the decision and notification are reported", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "notified", true)
				testutil.AssertJSONContains(t, rr, "setupUrl", "https://village.test/setup?token=t")
			})
		})

		testutil.When(t, "it is rejected but the email fails", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().Decide(gomock.Any(), "app-1", "rejected", "Not a fit").Return(&service.DecisionResult{
				Application:       &models.Application{ID: "app-1", Status: models.StatusRejected},
				NotificationError: "Failed to send rejection email",
			}, nil)

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/app-1/decision",
				map[string]string{"decision": "rejected", "reason": " Not a fit "}))
			testutil.Then(t, "the decision still succeeds", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "notified", false)
				testutil.AssertJSONContains(t, rr, "notificationError", "Failed to send rejection email")
			})
		})

		testutil.When(t, "it was already decided", func(t *testing.T) {
			svc, router := newRouter(t)
			svc.EXPECT().Decide(gomock.Any(), "app-1", "approved", "").
				Return(nil, dErrors.New(dErrors.CodeConflict, "application has already been decided"))

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/app-1/decision",
				map[string]string{"decision": "approved"}))
			testutil.Then(t, "a 409 is returned", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeConflict))
			})
		})
	})
}
