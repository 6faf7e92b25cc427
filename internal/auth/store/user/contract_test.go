package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civicfund/internal/auth/models"
	id "civicfund/pkg/domain"
)

type userStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, address string) (*models.User, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.User, error)
	Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error)
}

type storeContractSuite struct {
	suite.Suite
	store userStore
	ctx   context.Context
	base  time.Time
}

func (s *storeContractSuite) createUser(address string, role id.Role, offset time.Duration) *models.User {
	u, err := models.NewUser(id.UserID(uuid.New()), address, "Test User", "$2a$hash", role, s.base.Add(offset))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, u))
	return u
}

func (s *storeContractSuite) TestCreateAndFind() {
	u := s.createUser("pat@example.com", id.RoleDonor, 0)

	byID, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, byID.Email)
	s.Equal(id.RoleDonor, byID.Role)

	byEmail, err := s.store.FindByEmail(s.ctx, "  PAT@Example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)

	_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, ErrNotFound)
}

func (s *storeContractSuite) TestDuplicateEmailConflicts() {
	s.createUser("sam@example.com", id.RoleDonor, 0)
	dup, err := models.NewUser(id.UserID(uuid.New()), "SAM@example.com", "Other", "$2a$hash", id.RoleDonor, s.base)
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(s.ctx, dup), ErrConflict)
}

func (s *storeContractSuite) TestListFiltersNewestFirst() {
	older := s.createUser("a@example.com", id.RoleDonor, 0)
	newer := s.createUser("b@example.com", id.RoleDonor, time.Minute)
	s.createUser("admin@example.com", id.RoleAdmin, 2*time.Minute)

	donors, err := s.store.List(s.ctx, models.ListFilter{Role: id.RoleDonor})
	s.Require().NoError(err)
	s.Require().Len(donors, 2)
	s.Equal(newer.ID, donors[0].ID)
	s.Equal(older.ID, donors[1].ID)

	limited, err := s.store.List(s.ctx, models.ListFilter{Limit: 1})
	s.Require().NoError(err)
	s.Len(limited, 1)

	byQuery, err := s.store.List(s.ctx, models.ListFilter{Query: "ADMIN@"})
	s.Require().NoError(err)
	s.Len(byQuery, 1)
}

func (s *storeContractSuite) TestExecute() {
	u := s.createUser("exec@example.com", id.RoleDonor, 0)

	updated, err := s.store.Execute(s.ctx, u.ID,
		func(u *models.User) error { return u.CanReview(models.ActionSuspend) },
		func(u *models.User) { u.ApplyReview(models.ActionSuspend, s.base.Add(time.Hour)) },
	)
	s.Require().NoError(err)
	s.Equal(models.StatusSuspended, updated.Status)

	refused := errors.New("refused")
	_, err = s.store.Execute(s.ctx, u.ID,
		func(*models.User) error { return refused },
		func(u *models.User) { u.FullName = "changed" },
	)
	s.ErrorIs(err, refused)

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSuspended, found.Status)
	s.Equal("Test User", found.FullName)

	_, err = s.store.Execute(s.ctx, id.UserID(uuid.New()),
		func(*models.User) error { return nil }, func(*models.User) {})
	s.ErrorIs(err, ErrNotFound)
}
