//go:build integration

package store

import (
	"context"
	"testing"

	"civicfund/pkg/testutil/containers"

	"github.com/stretchr/testify/suite"
)

type PostgresStoreSuite struct {
	storeContractSuite
	pg *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx, "donations", "campaigns"))
}
