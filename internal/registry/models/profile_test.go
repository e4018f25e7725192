package models

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	id "carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
)

type ProfileSuite struct {
	suite.Suite
}

func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileSuite))
}

func (s *ProfileSuite) newProfile(certs ...string) *Profile {
	p, err := NewProfile("0xcaregiver", "Ada", []byte("bio"), 4, certs, true, 100)
	s.Require().NoError(err)
	return p
}

// TestConstructorInvariants verifies field bounds at creation time.
func (s *ProfileSuite) TestConstructorInvariants() {
	s.Run("fresh profile starts unverified with zeroed reputation", func() {
		p := s.newProfile()
		s.False(p.IsVerified)
		s.Zero(p.ReputationScore)
		s.Zero(p.ReviewCount)
		s.Equal(uint64(100), p.LastUpdated)
	})

	s.Run("rejects zero identity", func() {
		_, err := NewProfile(id.Zero, "Ada", nil, 0, nil, false, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects name over 50 characters", func() {
		_, err := NewProfile("0xc", strings.Repeat("n", MaxNameLen+1), nil, 0, nil, false, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("name bound counts characters, not bytes", func() {
		// 50 multi-byte runes are within bounds even though they exceed 50 bytes.
		_, err := NewProfile("0xc", strings.Repeat("é", MaxNameLen), nil, 0, nil, false, 1)
		s.NoError(err)
	})

	s.Run("rejects bio over 500 bytes", func() {
		_, err := NewProfile("0xc", "Ada", bytes.Repeat([]byte{'b'}, MaxBioBytes+1), 0, nil, false, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects negative experience years", func() {
		_, err := NewProfile("0xc", "Ada", nil, -1, nil, false, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects more than 10 certifications", func() {
		certs := make([]string, MaxCertifications+1)
		for i := range certs {
			certs[i] = "Cert"
		}
		_, err := NewProfile("0xc", "Ada", nil, 0, certs, false, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeMaxCertifications))
	})

	s.Run("rejects certification over 100 characters", func() {
		_, err := NewProfile("0xc", "Ada", nil, 0, []string{strings.Repeat("c", MaxCertLen+1)}, false, 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("constructor does not alias caller slices", func() {
		certs := []string{"Cert1"}
		bio := []byte("bio")
		p, err := NewProfile("0xc", "Ada", bio, 0, certs, false, 1)
		s.Require().NoError(err)
		certs[0] = "mutated"
		bio[0] = 'X'
		s.Equal("Cert1", p.Certifications[0])
		s.Equal(byte('b'), p.Bio[0])
	})
}

// TestCertificationList verifies the bounded, order-preserving list.
func (s *ProfileSuite) TestCertificationList() {
	s.Run("append preserves order", func() {
		p := s.newProfile("Cert1")
		s.Require().NoError(p.AddCertification("Cert2", 101))
		s.Equal([]string{"Cert1", "Cert2"}, p.Certifications)
		s.Equal(uint64(101), p.LastUpdated)
	})

	s.Run("rejects append at capacity", func() {
		p := s.newProfile()
		for i := 0; i < MaxCertifications; i++ {
			s.Require().NoError(p.AddCertification("Cert", 101))
		}
		err := p.AddCertification("Overflow", 102)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeMaxCertifications))
		s.Len(p.Certifications, MaxCertifications)
	})

	s.Run("removal is positional and order-preserving", func() {
		p := s.newProfile("A", "B", "C", "D")
		s.Require().NoError(p.RemoveCertification(1, 101))
		s.Equal([]string{"A", "C", "D"}, p.Certifications)
	})

	s.Run("removes one element even with duplicate values", func() {
		p := s.newProfile("X", "X", "X")
		s.Require().NoError(p.RemoveCertification(0, 101))
		s.Equal([]string{"X", "X"}, p.Certifications)
	})

	s.Run("rejects out-of-range index", func() {
		p := s.newProfile("A")
		for _, index := range []int{-1, 1, 5} {
			err := p.RemoveCertification(index, 101)
			s.Require().Error(err, "index %d", index)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
		s.Equal([]string{"A"}, p.Certifications)
	})
}

// TestVerification verifies the one-way false→true transition.
func (s *ProfileSuite) TestVerification() {
	s.Run("verifies once", func() {
		p := s.newProfile()
		s.Require().NoError(p.CanVerify())
		p.ApplyVerification(101)
		s.True(p.IsVerified)
		s.Equal(uint64(101), p.LastUpdated)
	})

	s.Run("rejects double verification", func() {
		p := s.newProfile()
		p.ApplyVerification(101)
		err := p.CanVerify()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
	})
}

// TestReputation verifies monotone counters and accrual preconditions.
func (s *ProfileSuite) TestReputation() {
	s.Run("rejects non-positive increments", func() {
		p := s.newProfile()
		p.ApplyVerification(101)
		for _, add := range []int64{0, -1, -100} {
			err := p.CanAccrueReputation(add)
			s.Require().Error(err, "scoreAdd %d", add)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidReputation))
		}
	})

	s.Run("rejects accrual on unverified profile", func() {
		p := s.newProfile()
		err := p.CanAccrueReputation(10)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotVerified))
	})

	s.Run("counters only grow", func() {
		p := s.newProfile()
		p.ApplyVerification(101)
		p.ApplyReputation(10, 1, 102)
		p.ApplyReputation(5, 0, 103)
		s.Equal(uint64(15), p.ReputationScore)
		s.Equal(uint64(1), p.ReviewCount)
	})

	s.Run("saturates instead of wrapping", func() {
		p := s.newProfile()
		p.ApplyVerification(101)
		p.ApplyReputation(^uint64(0), 0, 102)
		p.ApplyReputation(1, 0, 103)
		s.Equal(^uint64(0), p.ReputationScore)
	})
}

// TestPartialUpdate verifies the provided-or-retained merge semantics.
func (s *ProfileSuite) TestPartialUpdate() {
	strPtr := func(v string) *string { return &v }
	intPtr := func(v int) *int { return &v }
	boolPtr := func(v bool) *bool { return &v }

	s.Run("only provided fields change", func() {
		p := s.newProfile("Cert1")
		req := &UpdateProfileRequest{Name: strPtr("Grace"), IsAvailable: boolPtr(false)}
		s.Require().NoError(req.Validate())
		req.Apply(p, 200)

		s.Equal("Grace", p.Name)
		s.False(p.IsAvailable)
		s.Equal([]byte("bio"), p.Bio)
		s.Equal(4, p.ExperienceYears)
		s.Equal([]string{"Cert1"}, p.Certifications)
		s.Equal(uint64(200), p.LastUpdated)
	})

	s.Run("empty update still refreshes the timestamp", func() {
		p := s.newProfile()
		req := &UpdateProfileRequest{}
		s.Require().NoError(req.Validate())
		req.Apply(p, 200)
		s.Equal(uint64(200), p.LastUpdated)
	})

	s.Run("validates provided fields only", func() {
		tooLong := strings.Repeat("n", MaxNameLen+1)
		err := (&UpdateProfileRequest{Name: &tooLong}).Validate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		err = (&UpdateProfileRequest{ExperienceYears: intPtr(-3)}).Validate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
