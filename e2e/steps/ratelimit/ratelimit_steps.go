package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(ctx context.Context, path string, body any) error
	GetLastResponseStatus() int
	SetForwardedIP(ip string)
}

// RegisterSteps registers per-client form limit steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^my requests come from IP "([^"]*)"$`, steps.fromIP)
	ctx.Step(`^I submit (\d+) failed logins for "([^"]*)"$`, steps.failLogins)
	ctx.Step(`^every failed login should return (\d+)$`, steps.everyStatus)
	ctx.Step(`^the next login attempt should return (\d+)$`, steps.nextStatus)
}

type ratelimitSteps struct {
	tc       TestContext
	email    string
	statuses []int
}

func (s *ratelimitSteps) fromIP(_ context.Context, ip string) error {
	s.tc.SetForwardedIP(ip)
	return nil
}

func (s *ratelimitSteps) attempt(ctx context.Context) (int, error) {
	if err := s.tc.POST(ctx, "/auth/login", map[string]string{
		"email":    s.email,
		"password": "definitely-wrong",
	}); err != nil {
		return 0, err
	}
	return s.tc.GetLastResponseStatus(), nil
}

func (s *ratelimitSteps) failLogins(ctx context.Context, n int, email string) error {
	s.email = email
	s.statuses = s.statuses[:0]
	for range n {
		status, err := s.attempt(ctx)
		if err != nil {
			return err
		}
		s.statuses = append(s.statuses, status)
	}
	return nil
}

func (s *ratelimitSteps) everyStatus(_ context.Context, want int) error {
	for i, got := range s.statuses {
		if got != want {
			return fmt.Errorf("attempt %d returned %d, want %d", i+1, got, want)
		}
	}
	return nil
}

func (s *ratelimitSteps) nextStatus(ctx context.Context, want int) error {
	got, err := s.attempt(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %d, got %d", want, got)
	}
	return nil
}
