package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"instructorhub/internal/platform/config"
	"instructorhub/internal/platform/logger"
	"instructorhub/pkg/testutil"
)

// =============================================================================
// End-to-end Suite
// =============================================================================
// The real process wiring with in-memory backends. The payment gateway and
// email relay are httptest servers standing in for the external APIs.

type sentEmail struct {
	TemplateID string            `json:"template_id"`
	Params     map[string]string `json:"template_params"`
}

type EndToEndSuite struct {
	suite.Suite
	app      *App
	gateway  *httptest.Server
	relay    *httptest.Server
	mu       sync.Mutex
	emails   []sentEmail
	creates  int
	adminKey string
}

func TestEndToEndSuite(t *testing.T) {
	suite.Run(t, new(EndToEndSuite))
}

func (s *EndToEndSuite) SetupTest() {
	s.emails = nil
	s.creates = 0
	s.adminKey = "admin-secret"

	s.gateway = httptest.NewServer(http.HandlerFunc(s.serveGateway))
	s.relay = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sent sentEmail
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.emails = append(s.emails, sent)
		s.mu.Unlock()
		_, _ = w.Write([]byte("OK"))
	}))

	cfg := &config.Config{
		Addr:         ":0",
		AdminToken:   s.adminKey,
		SetupURLBase: "https://village.test/instructor-setup.html",
		PlatformURL:  "https://village.test",
		PlatformName: "Village",
		Identity:     config.IdentityConfig{SigningKey: "e2e-signing-key"},
		Gateway:      config.GatewayConfig{SecretKey: "sk_test", BaseURL: s.gateway.URL, Timeout: 2 * time.Second},
		Relay: config.RelayConfig{
			ServiceID:           "svc",
			PublicKey:           "pk",
			ApprovalTemplateID:  "tpl-approve",
			RejectionTemplateID: "tpl-reject",
			WelcomeTemplateID:   "tpl-welcome",
			BaseURL:             s.relay.URL,
			Timeout:             2 * time.Second,
		},
		Onboarding: config.OnboardingConfig{
			CredentialTTL:         7 * 24 * time.Hour,
			LockTTL:               10 * time.Second,
			StoreTimeout:          time.Second,
			VerifyAccountOnSubmit: true,
			BankCacheTTL:          time.Minute,
		},
	}
	a, err := New(context.Background(), cfg, logger.Discard())
	s.Require().NoError(err)
	s.app = a
}

func (s *EndToEndSuite) TearDownTest() {
	s.app.Close()
	s.gateway.Close()
	s.relay.Close()
}

func (s *EndToEndSuite) serveGateway(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/bank/resolve":
		_, _ = w.Write([]byte(`{"status":true,"message":"Account number resolved","data":{"account_number":"0123456789","account_name":"JANE DOE","bank_id":9}}`))
	case r.Method == http.MethodPost && r.URL.Path == "/subaccount":
		s.mu.Lock()
		s.creates++
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"status":true,"message":"Subaccount created","data":{"id":1,"subaccount_code":"ACCT_e2e","business_name":"Jane Teaches","settlement_bank":"058","account_number":"0123456789","percentage_charge":80,"active":true}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/bank":
		_, _ = w.Write([]byte(`{"status":true,"message":"Banks retrieved","data":[{"id":9,"name":"GTBank","code":"058","active":true}]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":false,"message":"not found"}`))
	}
}

func (s *EndToEndSuite) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.app.Handler, req)
}

func (s *EndToEndSuite) lastEmail() sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().NotEmpty(s.emails)
	return s.emails[len(s.emails)-1]
}

func (s *EndToEndSuite) TestApprovalToActivation() {
	t := s.T()

	rr := s.do(testutil.NewJSONRequest(t, http.MethodPost, "/notify-decision/approve", map[string]string{
		"email": "jane@example.com", "name": "Jane Doe", "applicationId": "app-1",
	}))
	testutil.AssertStatusOK(t, rr)

	approval := s.lastEmail()
	s.Equal("tpl-approve", approval.TemplateID)
	setupURL, err := url.Parse(approval.Params["setup_url"])
	s.Require().NoError(err)
	token := setupURL.Query().Get("token")
	s.Len(token, 64)

	rr = s.do(testutil.NewJSONRequest(t, http.MethodPost, "/validate-setup-token", map[string]string{"token": token}))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "valid", true)
	testutil.AssertJSONContains(t, rr, "userEmail", "jane@example.com")

	details := map[string]string{
		"token":          token,
		"bank_code":      "058",
		"account_number": "0123456789",
		"account_name":   "Jane Doe",
		"business_name":  "Jane Teaches",
	}
	rr = s.do(testutil.NewJSONRequest(t, http.MethodPost, "/complete-onboarding", details))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "subaccount_code", "ACCT_e2e")
	s.app.onboarding.Wait()
	s.Equal("tpl-welcome", s.lastEmail().TemplateID)

	rr = s.do(testutil.NewJSONRequest(t, http.MethodPost, "/complete-onboarding", details))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	s.Equal(1, s.creates)

	rr = s.do(testutil.NewJSONRequest(t, http.MethodPost, "/validate-setup-token", map[string]string{"token": token}))
	testutil.AssertNotRedeemable(t, rr, "Token already used")

	rr = s.do(testutil.AsAdmin(testutil.NewRequest(t, http.MethodGet, "/admin/onboarding/reconcile"), s.adminKey))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "count", float64(0))
}

func (s *EndToEndSuite) TestApplicationDecisionFlow() {
	t := s.T()

	rr := s.do(testutil.NewJSONRequest(t, http.MethodPost, "/applications", map[string]string{
		"Full Name": "Ada Obi", "Email Address": "ada@example.com", "Area of Expertise": "Go",
	}))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[struct {
		ApplicationID string `json:"applicationId"`
	}](t, rr)

	rr = s.do(testutil.AsAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/admin/applications/"+resp.ApplicationID+"/decision",
		map[string]string{"decision": "rejected", "reason": "Portfolio incomplete"}), s.adminKey))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "notified", true)

	rejection := s.lastEmail()
	s.Equal("tpl-reject", rejection.TemplateID)
	s.Equal("Portfolio incomplete", rejection.Params["rejection_reason"])
}

func (s *EndToEndSuite) TestCrossCuttingRoutes() {
	t := s.T()

	s.Run("admin routes need the token", func() {
		rr := s.do(testutil.NewRequest(t, http.MethodGet, "/admin/applications"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	s.Run("preflight", func() {
		rr := s.do(testutil.NewRequest(t, http.MethodOptions, "/complete-onboarding"))
		testutil.AssertStatusOK(t, rr)
		s.Equal("*", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	s.Run("wrong method", func() {
		rr := s.do(testutil.NewRequest(t, http.MethodGet, "/complete-onboarding"))
		testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
		testutil.AssertJSONContains(t, rr, "error", "Method Not Allowed")
	})

	s.Run("health without backends", func() {
		rr := s.do(testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	s.Run("metrics", func() {
		rr := s.do(testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		s.Contains(rr.Body.String(), "go_goroutines")
	})

	s.Run("banks", func() {
		rr := s.do(testutil.NewRequest(t, http.MethodGet, "/banks"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", true)
	})
}

func (s *EndToEndSuite) TestPublicRateLimit() {
	cfg := *s.app.cfg
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Public: 2, Window: time.Minute}
	limited, err := New(context.Background(), &cfg, logger.Discard())
	s.Require().NoError(err)
	defer limited.Close()
	s.NotNil(limited.limits, "in-memory limiter without redis")

	banks := func() *httptest.ResponseRecorder {
		return testutil.DoRequest(limited.Handler, httptest.NewRequest(http.MethodGet, "/banks", nil))
	}
	s.Equal(http.StatusOK, banks().Code)
	s.Equal(http.StatusOK, banks().Code)
	rr := banks()
	s.Equal(http.StatusTooManyRequests, rr.Code)
	s.NotEmpty(rr.Header().Get("Retry-After"))

	health := testutil.DoRequest(limited.Handler, httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, health.Code)
}
