package e2e

import (
	"github.com/cucumber/godog"

	"instructorhub/e2e/steps/applications"
	"instructorhub/e2e/steps/common"
	"instructorhub/e2e/steps/onboarding"
	"instructorhub/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background, generic requests and assertions
	common.RegisterSteps(ctx, tc)

	applications.RegisterSteps(ctx, tc)
	onboarding.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
