package tlscert

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CertSuite struct {
	suite.Suite
	certPath string
	keyPath  string
}

func TestCertSuite(t *testing.T) {
	suite.Run(t, new(CertSuite))
}

func (s *CertSuite) SetupTest() {
	dir := s.T().TempDir()
	s.certPath = filepath.Join(dir, "tls", "cert.pem")
	s.keyPath = filepath.Join(dir, "tls", "key.pem")
}

func (s *CertSuite) TestGenerateAndCheck() {
	certPEM, keyPEM, err := Generate(Options{Hosts: []string{"sho.rt", "10.0.0.1"}})
	s.Require().NoError(err)
	s.Require().NoError(Check(certPEM, keyPEM, time.Now()))

	s.ErrorIs(Check(certPEM, keyPEM, time.Now().Add(2*defaultValidity)), ErrCertExpired)
	s.ErrorIs(Check(certPEM, keyPEM, time.Now().Add(-time.Hour)), ErrCertNotValidYet)
	s.ErrorIs(Check(nil, keyPEM, time.Now()), ErrBlankPEM)

	otherCert, _, err := Generate(Options{})
	s.Require().NoError(err)
	s.Error(Check(otherCert, keyPEM, time.Now()))
}

func (s *CertSuite) TestEnsurePair() {
	s.Run("missing files", func() {
		written, err := EnsurePair(s.certPath, s.keyPath, Options{})
		s.Require().NoError(err)
		s.True(written)
	})

	s.Run("valid pair kept", func() {
		before, err := os.ReadFile(s.certPath)
		s.Require().NoError(err)

		written, err := EnsurePair(s.certPath, s.keyPath, Options{})
		s.Require().NoError(err)
		s.False(written)

		after, err := os.ReadFile(s.certPath)
		s.Require().NoError(err)
		s.Equal(before, after)
	})

	s.Run("expired pair reissued", func() {
		certPEM, keyPEM, err := Generate(Options{
			NotBefore: time.Now().Add(-48 * time.Hour),
			Validity:  time.Hour,
		})
		s.Require().NoError(err)
		s.Require().NoError(os.WriteFile(s.certPath, certPEM, 0o600))
		s.Require().NoError(os.WriteFile(s.keyPath, keyPEM, 0o600))

		written, err := EnsurePair(s.certPath, s.keyPath, Options{})
		s.Require().NoError(err)
		s.True(written)

		fresh, err := os.ReadFile(s.certPath)
		s.Require().NoError(err)
		key, err := os.ReadFile(s.keyPath)
		s.Require().NoError(err)
		s.NoError(Check(fresh, key, time.Now()))
	})

	s.Run("broken pair is an error", func() {
		s.Require().NoError(os.WriteFile(s.certPath, []byte("garbage"), 0o600))
		_, err := EnsurePair(s.certPath, s.keyPath, Options{})
		s.Error(err)
	})
}
