package donation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(ctx context.Context, path string, body any) error
	GET(ctx context.Context, path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers campaign and donation steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &donationSteps{tc: tc}

	ctx.Step(`^I note the amount raised by campaign "([^"]*)"$`, steps.noteRaised)
	ctx.Step(`^I donate "\$([0-9.]+)" to campaign "([^"]*)" as "([^"]*)"$`, steps.donate)
	ctx.Step(`^the amount raised by campaign "([^"]*)" should have grown by "\$([0-9.]+)"$`, steps.raisedGrewBy)
}

type donationSteps struct {
	tc     TestContext
	raised map[string]int64
}

func cents(dollars string) (int64, error) {
	whole, frac, _ := strings.Cut(dollars, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", dollars, err)
	}
	var f int64
	if frac != "" {
		frac = (frac + "00")[:2]
		if f, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return 0, fmt.Errorf("amount %q: %w", dollars, err)
		}
	}
	return w*100 + f, nil
}

func (s *donationSteps) raisedCents(ctx context.Context, slug string) (int64, error) {
	if err := s.tc.GET(ctx, "/api/campaigns/"+slug, nil); err != nil {
		return 0, err
	}
	v, err := s.tc.GetResponseField("raised_cents")
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("raised_cents is %T", v)
	}
	return int64(n), nil
}

func (s *donationSteps) noteRaised(ctx context.Context, slug string) error {
	n, err := s.raisedCents(ctx, slug)
	if err != nil {
		return err
	}
	if s.raised == nil {
		s.raised = map[string]int64{}
	}
	s.raised[slug] = n
	return nil
}

func (s *donationSteps) donate(ctx context.Context, amount, slug, name string) error {
	c, err := cents(amount)
	if err != nil {
		return err
	}
	return s.tc.POST(ctx, "/api/campaigns/"+slug+"/donations", map[string]any{
		"amount_cents": c,
		"frequency":    "one_time",
		"donor_name":   name,
		"email":        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.org",
		"employer":     "Self",
		"occupation":   "Volunteer",
	})
}

func (s *donationSteps) raisedGrewBy(ctx context.Context, slug, amount string) error {
	want, err := cents(amount)
	if err != nil {
		return err
	}
	before, ok := s.raised[slug]
	if !ok {
		return fmt.Errorf("no amount noted for %s", slug)
	}
	after, err := s.raisedCents(ctx, slug)
	if err != nil {
		return err
	}
	if after-before != want {
		return fmt.Errorf("raised grew by %d cents, want %d", after-before, want)
	}
	return nil
}
