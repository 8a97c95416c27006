package applications

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	AdminPOST(path string, body interface{}) error
	AdminGET(path string) error
	GetResponseField(field string) (interface{}, error)
	GetApplicationID() string
	SetApplicationID(id string)
	SetSetupToken(token string)
}

// RegisterSteps registers instructor application step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &applicationSteps{tc: tc}

	ctx.Step(`^I submit an application for "([^"]*)" with email "([^"]*)" and expertise "([^"]*)"$`, steps.submitApplication)
	ctx.Step(`^I save the application id$`, steps.saveApplicationID)
	ctx.Step(`^the admin (approves|rejects) the application$`, steps.decide)
	ctx.Step(`^the admin rejects the application because "([^"]*)"$`, steps.rejectWithReason)
	ctx.Step(`^I save the setup token from the setup url$`, steps.saveTokenFromSetupURL)
	ctx.Step(`^the admin lists "([^"]*)" applications$`, steps.listApplications)
}

type applicationSteps struct {
	tc TestContext
}

func (s *applicationSteps) submitApplication(ctx context.Context, name, email, expertise string) error {
	return s.tc.POST("/applications", map[string]interface{}{
		"fullName":   name,
		"email":      email,
		"expertise":  expertise,
		"experience": "5 years",
		"bio":        "Teaches evening classes.",
	})
}

func (s *applicationSteps) saveApplicationID(ctx context.Context) error {
	id, err := s.tc.GetResponseField("applicationId")
	if err != nil {
		return err
	}
	str, ok := id.(string)
	if !ok || str == "" {
		return fmt.Errorf("applicationId missing")
	}
	s.tc.SetApplicationID(str)
	return nil
}

func (s *applicationSteps) decide(ctx context.Context, verb string) error {
	decision := "approved"
	if verb == "rejects" {
		decision = "rejected"
	}
	return s.tc.AdminPOST("/admin/applications/"+s.tc.GetApplicationID()+"/decision", map[string]interface{}{
		"decision": decision,
	})
}

func (s *applicationSteps) rejectWithReason(ctx context.Context, reason string) error {
	return s.tc.AdminPOST("/admin/applications/"+s.tc.GetApplicationID()+"/decision", map[string]interface{}{
		"decision": "rejected",
		"reason":   reason,
	})
}

func (s *applicationSteps) saveTokenFromSetupURL(ctx context.Context) error {
	raw, err := s.tc.GetResponseField("setupUrl")
	if err != nil {
		return err
	}
	u, err := url.Parse(fmt.Sprint(raw))
	if err != nil {
		return fmt.Errorf("setupUrl is not a URL: %w", err)
	}
	token := u.Query().Get("token")
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("setupUrl %q carries no token", raw)
	}
	s.tc.SetSetupToken(token)
	return nil
}

func (s *applicationSteps) listApplications(ctx context.Context, status string) error {
	return s.tc.AdminGET("/admin/applications?status=" + url.QueryEscape(status))
}
