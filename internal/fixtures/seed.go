package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authmodels "civicfund/internal/auth/models"
	blogmodels "civicfund/internal/blog/models"
	campaignmodels "civicfund/internal/campaign/models"
	donationmodels "civicfund/internal/donation/models"
	registrationmodels "civicfund/internal/registration/models"
	"civicfund/pkg/platform/sentinel"
)

type UserStore interface {
	Create(ctx context.Context, u *authmodels.User) error
}

type CampaignStore interface {
	Create(ctx context.Context, c *campaignmodels.Campaign) error
}

type RegistrationStore interface {
	Create(ctx context.Context, r *registrationmodels.Registration) error
}

type DonationStore interface {
	Create(ctx context.Context, d *donationmodels.Donation) error
}

type PostStore interface {
	Upsert(ctx context.Context, p *blogmodels.Post) error
}

// Hasher hashes the demo password the seeded accounts share.
type Hasher interface {
	HashPassword(password string) (string, error)
}

// Stores are the seed targets. A nil store skips its part of the dataset.
type Stores struct {
	Users         UserStore
	Campaigns     CampaignStore
	Registrations RegistrationStore
	Donations     DonationStore
	Posts         PostStore
}

// Result counts what Seed wrote. Records that already exist are skipped,
// so seeding a persistent store twice is harmless.
type Result struct {
	Users         int `json:"users"`
	Campaigns     int `json:"campaigns"`
	Registrations int `json:"registrations"`
	Donations     int `json:"donations"`
	Posts         int `json:"posts"`
	Skipped       int `json:"skipped"`
}

// Seed writes the dataset into stores. now stamps the seeded accounts.
func Seed(ctx context.Context, ds *Dataset, stores Stores, hasher Hasher, now time.Time, logger *slog.Logger) (Result, error) {
	var res Result
	hashes := map[string]string{}
	hash := func(password string) (string, error) {
		if h, ok := hashes[password]; ok {
			return h, nil
		}
		h, err := hasher.HashPassword(password)
		if err != nil {
			return "", fmt.Errorf("hash demo password: %w", err)
		}
		hashes[password] = h
		return h, nil
	}

	create := func(kind string, counter *int, fn func() error) error {
		err := fn()
		switch {
		case err == nil:
			*counter++
		case errors.Is(err, sentinel.ErrConflict):
			res.Skipped++
		default:
			return fmt.Errorf("seed %s: %w", kind, err)
		}
		return nil
	}

	if stores.Users != nil {
		for _, a := range ds.Accounts {
			h, err := hash(a.Password)
			if err != nil {
				return res, err
			}
			u := *a.User
			u.PasswordHash = h
			u.CreatedAt, u.UpdatedAt = now, now
			if err := create("user", &res.Users, func() error { return stores.Users.Create(ctx, &u) }); err != nil {
				return res, err
			}
		}
	}
	if stores.Campaigns != nil {
		for _, c := range ds.Campaigns {
			c := *c
			c.UpdatedAt = c.CreatedAt
			if err := create("campaign", &res.Campaigns, func() error { return stores.Campaigns.Create(ctx, &c) }); err != nil {
				return res, err
			}
		}
	}
	if stores.Registrations != nil {
		password := ""
		if len(ds.Accounts) > 0 {
			password = ds.Accounts[0].Password
		}
		for _, r := range ds.Registrations {
			h, err := hash(password)
			if err != nil {
				return res, err
			}
			r := *r
			r.PasswordHash = h
			if err := create("registration", &res.Registrations, func() error { return stores.Registrations.Create(ctx, &r) }); err != nil {
				return res, err
			}
		}
	}
	if stores.Donations != nil {
		for _, d := range ds.Donations {
			d := *d
			if err := create("donation", &res.Donations, func() error { return stores.Donations.Create(ctx, &d) }); err != nil {
				return res, err
			}
		}
	}
	if stores.Posts != nil {
		for _, p := range ds.Posts {
			if err := create("post", &res.Posts, func() error { return stores.Posts.Upsert(ctx, p.Clone()) }); err != nil {
				return res, err
			}
		}
	}

	if logger != nil {
		logger.InfoContext(ctx, "fixtures seeded",
			"users", res.Users,
			"campaigns", res.Campaigns,
			"registrations", res.Registrations,
			"donations", res.Donations,
			"posts", res.Posts,
			"skipped", res.Skipped,
		)
	}
	return res, nil
}
