package e2e

import (
	"github.com/cucumber/godog"

	"civicfund/e2e/steps/auth"
	"civicfund/e2e/steps/common"
	"civicfund/e2e/steps/donation"
	"civicfund/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	donation.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
