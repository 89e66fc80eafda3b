package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func generateTestCert(t *testing.T, notBefore, notAfter time.Time) (certPEM, keyPEM []byte) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Device Bridge Test"},
			CommonName:   "localhost",
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	keyDER, err := x509.MarshalECPrivateKey(priv)
	require.NoError(t, err)
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	return certPEM, keyPEM
}

func writeTempFiles(t *testing.T, certPEM, keyPEM []byte) (certPath, keyPath string) {
	dir := t.TempDir()
	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")

	require.NoError(t, os.WriteFile(certPath, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))

	return certPath, keyPath
}

func TestConfigEnabled(t *testing.T) {
	require.False(t, Config{}.Enabled())
	require.False(t, Config{ClientCAFile: "ca.pem"}.Enabled())
	require.True(t, Config{CertFile: "cert.pem"}.Enabled())
	require.True(t, Config{KeyFile: "key.pem"}.Enabled())
}

func TestLoadServerTLSConfig(t *testing.T) {
	now := time.Now()

	t.Run("loads server config", func(t *testing.T) {
		certPEM, keyPEM := generateTestCert(t, now.Add(-time.Hour), now.Add(time.Hour))
		certPath, keyPath := writeTempFiles(t, certPEM, keyPEM)

		tlsCfg, err := LoadServerTLSConfig(Config{CertFile: certPath, KeyFile: keyPath})
		require.NoError(t, err)
		require.Len(t, tlsCfg.Certificates, 1)
		require.Equal(t, uint16(tls.VersionTLS12), tlsCfg.MinVersion)
		require.Equal(t, tls.NoClientCert, tlsCfg.ClientAuth)
	})

	t.Run("requires client certificates with a client CA", func(t *testing.T) {
		certPEM, keyPEM := generateTestCert(t, now.Add(-time.Hour), now.Add(time.Hour))
		certPath, keyPath := writeTempFiles(t, certPEM, keyPEM)

		tlsCfg, err := LoadServerTLSConfig(Config{CertFile: certPath, KeyFile: keyPath, ClientCAFile: certPath})
		require.NoError(t, err)
		require.NotNil(t, tlsCfg.ClientCAs)
		require.Equal(t, tls.RequireAndVerifyClientCert, tlsCfg.ClientAuth)
	})

	t.Run("missing cert or key", func(t *testing.T) {
		_, err := LoadServerTLSConfig(Config{KeyFile: "key.pem"})
		require.ErrorIs(t, err, ErrCertNotFound)

		_, err = LoadServerTLSConfig(Config{CertFile: "cert.pem"})
		require.ErrorIs(t, err, ErrKeyNotFound)

		dir := t.TempDir()
		_, err = LoadServerTLSConfig(Config{
			CertFile: filepath.Join(dir, "missing.pem"),
			KeyFile:  filepath.Join(dir, "missing.key"),
		})
		require.ErrorIs(t, err, ErrCertNotFound)
	})

	t.Run("expired certificate", func(t *testing.T) {
		certPEM, keyPEM := generateTestCert(t, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
		certPath, keyPath := writeTempFiles(t, certPEM, keyPEM)

		_, err := LoadServerTLSConfig(Config{CertFile: certPath, KeyFile: keyPath})
		require.ErrorIs(t, err, ErrCertExpired)
	})

	t.Run("not yet valid certificate", func(t *testing.T) {
		certPEM, keyPEM := generateTestCert(t, now.Add(time.Hour), now.Add(48*time.Hour))
		certPath, keyPath := writeTempFiles(t, certPEM, keyPEM)

		_, err := LoadServerTLSConfig(Config{CertFile: certPath, KeyFile: keyPath})
		require.ErrorIs(t, err, ErrCertNotYetValid)
	})

	t.Run("mismatched key", func(t *testing.T) {
		certPEM, _ := generateTestCert(t, now.Add(-time.Hour), now.Add(time.Hour))
		_, otherKey := generateTestCert(t, now.Add(-time.Hour), now.Add(time.Hour))
		certPath, keyPath := writeTempFiles(t, certPEM, otherKey)

		_, err := LoadServerTLSConfig(Config{CertFile: certPath, KeyFile: keyPath})
		require.ErrorIs(t, err, ErrCertInvalid)
	})

	t.Run("invalid client CA", func(t *testing.T) {
		certPEM, keyPEM := generateTestCert(t, now.Add(-time.Hour), now.Add(time.Hour))
		certPath, keyPath := writeTempFiles(t, certPEM, keyPEM)
		caPath := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(caPath, []byte("not a certificate"), 0o600))

		_, err := LoadServerTLSConfig(Config{CertFile: certPath, KeyFile: keyPath, ClientCAFile: caPath})
		require.ErrorIs(t, err, ErrCAInvalid)

		_, err = LoadServerTLSConfig(Config{CertFile: certPath, KeyFile: keyPath, ClientCAFile: caPath + ".missing"})
		require.ErrorIs(t, err, ErrCANotFound)
	})
}
