package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	SetClientIP(ip string)
}

// RegisterSteps registers per-address throttling step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I am calling from IP "([^"]*)"$`, steps.callingFromIP)
	ctx.Step(`^I GET "([^"]*)" until I am throttled, at most (\d+) times$`, steps.getUntilThrottled)
	ctx.Step(`^I should have been throttled$`, steps.shouldHaveBeenThrottled)
}

type ratelimitSteps struct {
	tc        TestContext
	throttled bool
}

func (s *ratelimitSteps) callingFromIP(ctx context.Context, ip string) error {
	s.tc.SetClientIP(ip)
	s.throttled = false
	return nil
}

func (s *ratelimitSteps) getUntilThrottled(ctx context.Context, path string, attempts int) error {
	for range attempts {
		if err := s.tc.GET(path, nil); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == 429 {
			s.throttled = true
			return nil
		}
	}
	return nil
}

func (s *ratelimitSteps) shouldHaveBeenThrottled(ctx context.Context) error {
	if !s.throttled {
		return fmt.Errorf("no 429 after repeated requests, last status %d", s.tc.GetLastResponseStatus())
	}
	return nil
}
