package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civicfund/internal/registration/models"
	id "civicfund/pkg/domain"
)

type registrationStore interface {
	Create(ctx context.Context, r *models.Registration) error
	FindByID(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Registration, error)
	Execute(ctx context.Context, registrationID id.RegistrationID, validate func(*models.Registration) error, mutate func(*models.Registration)) (*models.Registration, error)
}

type storeContractSuite struct {
	suite.Suite
	store registrationStore
	ctx   context.Context
	base  time.Time
}

func (s *storeContractSuite) submit(address string, offset time.Duration) *models.Registration {
	r, err := models.NewRegistration(id.RegistrationID(uuid.New()), models.Submission{
		FullName:     "Riley Park",
		Email:        address,
		Role:         id.RoleOrganizer,
		Organization: "Park Fund",
		Documents: []models.DocumentMeta{
			{Kind: models.DocumentGovernmentID, FileName: "id.png", ContentType: "image/png", SizeBytes: 1024},
		},
		PasswordHash: "$2a$hash",
	}, s.base.Add(offset))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, r))
	return r
}

func (s *storeContractSuite) TestCreateFindRoundTripsDocuments() {
	r := s.submit("riley@example.com", 0)
	found, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(r.Documents, found.Documents)
	s.Equal(models.StatusPending, found.Status)
	s.True(found.UserID.IsNil())

	_, err = s.store.FindByID(s.ctx, id.RegistrationID(uuid.New()))
	s.ErrorIs(err, ErrNotFound)
}

func (s *storeContractSuite) TestOnePendingApplicationPerEmail() {
	first := s.submit("dup@example.com", 0)
	dup, err := models.NewRegistration(id.RegistrationID(uuid.New()), models.Submission{
		FullName: "Dup", Email: "dup@example.com", Role: id.RoleDonor, PasswordHash: "h",
	}, s.base)
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(s.ctx, dup), ErrConflict)

	_, err = s.store.Execute(s.ctx, first.ID,
		func(r *models.Registration) error { return r.CanReview(models.ActionReject, "incomplete") },
		func(r *models.Registration) {
			r.ApplyReview(models.ActionReject, id.UserID(uuid.New()), id.UserID{}, "incomplete", s.base)
		},
	)
	s.Require().NoError(err)
	s.NoError(s.store.Create(s.ctx, dup), "a rejected applicant may apply again")
}

func (s *storeContractSuite) TestListQueueOldestFirst() {
	newer := s.submit("b@example.com", time.Hour)
	older := s.submit("a@example.com", 0)
	approved := s.submit("c@example.com", 2*time.Hour)
	userID := id.UserID(uuid.New())
	updated, err := s.store.Execute(s.ctx, approved.ID,
		func(r *models.Registration) error { return r.CanReview(models.ActionApprove, "") },
		func(r *models.Registration) {
			r.ApplyReview(models.ActionApprove, id.UserID(uuid.New()), userID, "", s.base.Add(3*time.Hour))
		},
	)
	s.Require().NoError(err)
	s.Equal(userID, updated.UserID)

	pending, err := s.store.List(s.ctx, models.ListFilter{Statuses: []models.Status{models.StatusPending}})
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(older.ID, pending[0].ID)
	s.Equal(newer.ID, pending[1].ID)

	all, err := s.store.List(s.ctx, models.ListFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(all, 2)
}
