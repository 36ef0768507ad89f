package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/kbukum/fileproxy/validation"
)

// TLSConfig holds certificate paths and verification settings. The same
// struct configures the server (CertFile and KeyFile) and the client
// (CAFile, SkipVerify, and optionally a client certificate).
type TLSConfig struct {
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`
	// CAFile is a PEM bundle of roots trusted when dialing.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`
	// SkipVerify disables server certificate verification on the client.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`
	// MinVersion is "1.2" (default) or "1.3".
	MinVersion string `yaml:"min_version" mapstructure:"min_version" validate:"omitempty,oneof=1.2 1.3"`
}

// Validate checks field values and that cert and key come as a pair.
func (c *TLSConfig) Validate() error {
	if err := validation.Struct("tls", c); err != nil {
		return err
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("tls: cert_file and key_file must be set together")
	}
	return nil
}

// ServerEnabled reports whether a listener certificate is configured.
func (c *TLSConfig) ServerEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// ServerConfig loads the listener certificate. It returns nil when TLS is
// not configured.
func (c *TLSConfig) ServerConfig() (*tls.Config, error) {
	if !c.ServerEnabled() {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tls: load certificate: %w", err)
	}
	return &tls.Config{
		MinVersion:   c.minVersion(),
		Certificates: []tls.Certificate{cert},
	}, nil
}

// ClientConfig returns the dialing configuration, or nil when every field
// is zero and the system defaults apply.
func (c *TLSConfig) ClientConfig() (*tls.Config, error) {
	if *c == (TLSConfig{}) {
		return nil, nil
	}
	cfg := &tls.Config{
		MinVersion:         c.minVersion(),
		InsecureSkipVerify: c.SkipVerify,
	}
	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("tls: read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("tls: no certificates in %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}
	if c.ServerEnabled() {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tls: load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

func (c *TLSConfig) minVersion() uint16 {
	if c.MinVersion == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
