package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "civicfund/pkg/domain-errors"
)

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) TestRequiredRejectsBlank() {
	v := New()
	v.Required("full_name", "   ")
	s.False(v.Valid())
	s.Equal("is required", v.Fields()["full_name"])
}

func (s *ValidationSuite) TestLength() {
	s.Run("too short", func() {
		v := New()
		v.Length("full_name", "A", MinNameLength, MaxNameLength)
		s.Equal("must be at least 2 characters", v.Fields()["full_name"])
	})
	s.Run("too long", func() {
		v := New()
		v.Length("full_name", strings.Repeat("a", MaxNameLength+1), MinNameLength, MaxNameLength)
		s.Equal("must be at most 100 characters", v.Fields()["full_name"])
	})
	s.Run("counts runes not bytes", func() {
		v := New()
		v.Length("full_name", "Zoë", MinNameLength, 3)
		s.True(v.Valid())
	})
}

func (s *ValidationSuite) TestEmail() {
	v := New()
	v.Email("email", "not-an-email")
	s.Equal("must be a valid email address", v.Fields()["email"])

	v = New()
	v.Email("email", "")
	s.Equal("is required", v.Fields()["email"])

	v = New()
	v.Email("email", "donor@example.com")
	s.True(v.Valid())
}

func (s *ValidationSuite) TestPassword() {
	v := New()
	v.Password("password", "short")
	s.Equal("must be at least 8 characters", v.Fields()["password"])

	v = New()
	v.Password("password", strings.Repeat("x", MaxPasswordLength+1))
	s.Contains(v.Fields()["password"], "at most")
}

func (s *ValidationSuite) TestFirstMessageWins() {
	v := New()
	v.Add("email", "first")
	v.Add("email", "second")
	s.Equal("first", v.Fields()["email"])
}

func (s *ValidationSuite) TestErr() {
	s.NoError(New().Err("invalid form"))

	v := New()
	v.OneOf("frequency", "weekly", "one_time", "monthly")
	err := v.Err("invalid donation")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Equal("must be one of: one_time, monthly", de.Fields["frequency"])
}
