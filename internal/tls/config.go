package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrCertNotFound    = errors.New("certificate file not found")
	ErrKeyNotFound     = errors.New("key file not found")
	ErrCertInvalid     = errors.New("certificate invalid")
	ErrCertExpired     = errors.New("certificate expired")
	ErrCertNotYetValid = errors.New("certificate not yet valid")
	ErrCANotFound      = errors.New("CA certificate not found")
	ErrCAInvalid       = errors.New("CA certificate invalid")
)

// Config selects the server certificate and, for mTLS, the CA that client
// certificates must chain to.
type Config struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
}

// Enabled reports whether a certificate or key was configured.
func (c Config) Enabled() bool {
	return c.CertFile != "" || c.KeyFile != ""
}

// LoadServerTLSConfig builds the server TLS configuration. Setting ClientCAFile
// requires and verifies client certificates.
func LoadServerTLSConfig(cfg Config) (*tls.Config, error) {
	return loadServerTLSConfig(cfg, time.Now())
}

func loadServerTLSConfig(cfg Config, now time.Time) (*tls.Config, error) {
	if cfg.CertFile == "" {
		return nil, ErrCertNotFound
	}
	if cfg.KeyFile == "" {
		return nil, ErrKeyNotFound
	}

	cert, err := LoadCertificate(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	if err := checkValidity(cert, now); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.CertFile, err)
	}

	tlsConfig := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{*cert},
	}

	if cfg.ClientCAFile != "" {
		caPool, err := LoadCAPool(cfg.ClientCAFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientCAs = caPool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsConfig, nil
}

// LoadCertificate loads a certificate and key from files.
func LoadCertificate(certFile, keyFile string) (*tls.Certificate, error) {
	if _, err := os.Stat(certFile); os.IsNotExist(err) {
		return nil, ErrCertNotFound
	}
	if _, err := os.Stat(keyFile); os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertInvalid, err)
	}

	return &cert, nil
}

// LoadCAPool loads a CA certificate pool from a file.
func LoadCAPool(caFile string) (*x509.CertPool, error) {
	if _, err := os.Stat(caFile); os.IsNotExist(err) {
		return nil, ErrCANotFound
	}

	caData, err := os.ReadFile(filepath.Clean(caFile))
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caData) {
		return nil, ErrCAInvalid
	}

	return caPool, nil
}

// checkValidity rejects a leaf certificate outside its validity window.
func checkValidity(cert *tls.Certificate, now time.Time) error {
	leaf := cert.Leaf
	if leaf == nil {
		if len(cert.Certificate) == 0 {
			return ErrCertInvalid
		}
		parsed, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCertInvalid, err)
		}
		leaf = parsed
	}

	if now.Before(leaf.NotBefore) {
		return ErrCertNotYetValid
	}
	if now.After(leaf.NotAfter) {
		return ErrCertExpired
	}
	return nil
}
