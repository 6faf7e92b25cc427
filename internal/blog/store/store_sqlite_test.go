package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SQLiteStoreSuite struct {
	storeContractSuite
	sqlite *SQLiteStore
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.ctx = context.Background()
	st, err := OpenSQLite(s.ctx, filepath.Join(s.T().TempDir(), "blog.db"))
	s.Require().NoError(err)
	s.sqlite = st
	s.store = st
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.Require().NoError(s.sqlite.Close())
}
