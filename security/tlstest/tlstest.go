// Package tlstest generates throwaway certificates for TLS tests. Files are
// written under t.TempDir().
//
//	certs := tlstest.GenerateTLSCerts(t)
//	srv := security.ServerTLS{CertFile: certs.CertFile, KeyFile: certs.KeyFile}
package tlstest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TLSCerts is a test CA and a leaf certificate it signed.
type TLSCerts struct {
	CAFile   string
	CertFile string
	KeyFile  string

	CACert *x509.Certificate
	CAKey  *ecdsa.PrivateKey

	// Leaf is CertFile/KeyFile loaded as a key pair.
	Leaf tls.Certificate
	// CertPool trusts only the test CA.
	CertPool *x509.CertPool

	dir string
}

// GenerateTLSCerts creates a CA and a leaf valid for localhost, 127.0.0.1
// and ::1, usable for both server and client authentication.
func GenerateTLSCerts(t testing.TB) *TLSCerts {
	t.Helper()
	dir := t.TempDir()

	caKey := newKey(t)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"cognitokit test CA"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("tlstest: create CA cert: %v", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatalf("tlstest: parse CA cert: %v", err)
	}
	caFile := filepath.Join(dir, "ca.pem")
	writePEM(t, caFile, "CERTIFICATE", caDER)

	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	certs := &TLSCerts{CAFile: caFile, CACert: caCert, CAKey: caKey, CertPool: pool, dir: dir}
	certs.CertFile, certs.KeyFile, certs.Leaf = certs.issue(t, "localhost", 2)
	return certs
}

// ClientCert issues another leaf from the same CA, for mTLS clients.
func (c *TLSCerts) ClientCert(t testing.TB, commonName string) tls.Certificate {
	t.Helper()
	_, _, cert := c.issue(t, commonName, time.Now().UnixNano())
	return cert
}

func (c *TLSCerts) issue(t testing.TB, commonName string, serial int64) (certFile, keyFile string, cert tls.Certificate) {
	t.Helper()
	key := newKey(t)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{Organization: []string{"cognitokit test"}, CommonName: commonName},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, c.CACert, &key.PublicKey, c.CAKey)
	if err != nil {
		t.Fatalf("tlstest: create %s cert: %v", commonName, err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("tlstest: marshal %s key: %v", commonName, err)
	}

	certFile = filepath.Join(c.dir, commonName+"-"+big.NewInt(serial).String()+".pem")
	keyFile = filepath.Join(c.dir, commonName+"-"+big.NewInt(serial).String()+"-key.pem")
	writePEM(t, certFile, "CERTIFICATE", der)
	writePEM(t, keyFile, "EC PRIVATE KEY", keyDER)

	cert, err = tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		t.Fatalf("tlstest: load %s key pair: %v", commonName, err)
	}
	return certFile, keyFile, cert
}

// WriteInvalidPEM writes a PEM-shaped file that holds no certificate.
func WriteInvalidPEM(t testing.TB, filename string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	content := []byte("-----BEGIN CERTIFICATE-----\nnot-valid-base64-data\n-----END CERTIFICATE-----\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("tlstest: write invalid PEM: %v", err)
	}
	return path
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("tlstest: generate key: %v", err)
	}
	return key
}

func writePEM(t testing.TB, path, blockType string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("tlstest: create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: data}); err != nil {
		t.Fatalf("tlstest: encode PEM %s: %v", path, err)
	}
}
