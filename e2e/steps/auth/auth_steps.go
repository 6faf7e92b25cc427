package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// DemoPassword is shared by the seeded accounts.
const DemoPassword = "demo-password"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(ctx context.Context, path string, body any) error
	GET(ctx context.Context, path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetChallengeID() string
	SetChallengeID(id string)
	SetAccessToken(token string)
}

// RegisterSteps registers password + OTP login steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, steps.login)
	ctx.Step(`^I log in as "([^"]*)"$`, steps.loginWithDemoPassword)
	ctx.Step(`^I verify the one-time code "([^"]*)"$`, steps.verify)
	ctx.Step(`^I am signed in as "([^"]*)"$`, steps.signedInAs)
	ctx.Step(`^I request my profile$`, steps.profile)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) login(ctx context.Context, email, password string) error {
	if err := s.tc.POST(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 200 {
		return nil
	}
	challengeID, err := s.tc.GetResponseField("challenge_id")
	if err != nil {
		return err
	}
	s.tc.SetChallengeID(fmt.Sprint(challengeID))
	return nil
}

func (s *authSteps) loginWithDemoPassword(ctx context.Context, email string) error {
	return s.login(ctx, email, DemoPassword)
}

func (s *authSteps) verify(ctx context.Context, code string) error {
	if err := s.tc.POST(ctx, "/auth/otp/verify", map[string]string{
		"challenge_id": s.tc.GetChallengeID(),
		"code":         code,
	}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 200 {
		return nil
	}
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(fmt.Sprint(token))
	return nil
}

// signedInAs runs the full login against a server started in OTP demo mode.
func (s *authSteps) signedInAs(ctx context.Context, email string) error {
	if err := s.loginWithDemoPassword(ctx, email); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("login for %s returned %d", email, status)
	}
	if err := s.verify(ctx, "123456"); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("otp verification for %s returned %d", email, status)
	}
	return nil
}

func (s *authSteps) profile(ctx context.Context) error {
	return s.tc.GET(ctx, "/auth/me", nil)
}
