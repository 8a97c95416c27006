package onboarding

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	AdminGET(path string) error
	GetResponseField(field string) (interface{}, error)
	GetSetupToken() string
	SetSetupToken(token string)
}

// RegisterSteps registers setup token and activation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &onboardingSteps{tc: tc}

	ctx.Step(`^I issue a setup token for "([^"]*)" named "([^"]*)"$`, steps.issueToken)
	ctx.Step(`^I save the setup token$`, steps.saveToken)
	ctx.Step(`^I validate the saved setup token$`, steps.validateSaved)
	ctx.Step(`^I validate setup token "([^"]*)"$`, steps.validateToken)
	ctx.Step(`^I complete onboarding with account "([^"]*)" at bank "([^"]*)" as "([^"]*)"$`, steps.complete)
	ctx.Step(`^I request reconciliation$`, steps.reconcile)
}

type onboardingSteps struct {
	tc TestContext
}

func (s *onboardingSteps) issueToken(ctx context.Context, email, name string) error {
	return s.tc.POST("/issue-setup-token", map[string]interface{}{
		"applicantEmail": email,
		"applicantName":  name,
	})
}

func (s *onboardingSteps) saveToken(ctx context.Context) error {
	token, err := s.tc.GetResponseField("setupToken")
	if err != nil {
		return err
	}
	str, ok := token.(string)
	if !ok || str == "" {
		return fmt.Errorf("setupToken missing")
	}
	s.tc.SetSetupToken(str)
	return nil
}

func (s *onboardingSteps) validateSaved(ctx context.Context) error {
	return s.validateToken(ctx, s.tc.GetSetupToken())
}

func (s *onboardingSteps) validateToken(ctx context.Context, token string) error {
	return s.tc.POST("/validate-setup-token", map[string]interface{}{"token": token})
}

func (s *onboardingSteps) complete(ctx context.Context, account, bank, business string) error {
	return s.tc.POST("/complete-onboarding", map[string]interface{}{
		"token":          s.tc.GetSetupToken(),
		"bank_code":      bank,
		"account_number": account,
		"business_name":  business,
	})
}

func (s *onboardingSteps) reconcile(ctx context.Context) error {
	return s.tc.AdminGET("/admin/onboarding/reconcile")
}
