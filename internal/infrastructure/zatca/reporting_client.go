// HTTP client for the Fatoora simplified-invoice reporting API. The flow
// (sign XML, mint an RS256 JWT for the device, POST the signed document) is
// wired behind configuration and is never invoked by invoice finalization.

package zatca

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultReportingURL is the simplified-invoice reporting endpoint.
const DefaultReportingURL = "https://api.fatoora.gov.sa/invoices/reporting/simplified"

// ReportingConfig configures the submission client.
type ReportingConfig struct {
	URL         string // empty = DefaultReportingURL
	DeviceUUID  string // JWT issuer, assigned during device onboarding
	CertPath    string // PEM certificate used in ds:KeyInfo
	CertKeyPath string // PEM RSA private key for both JWT and XML signature
	Timeout     time.Duration
}

// ReportingClient signs and submits invoice XML documents.
type ReportingClient struct {
	cfg    ReportingConfig
	signer *SignerService
	http   *http.Client
}

// NewReportingClient builds the client.
func NewReportingClient(cfg ReportingConfig) *ReportingClient {
	if cfg.URL == "" {
		cfg.URL = DefaultReportingURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ReportingClient{
		cfg:    cfg,
		signer: NewSignerService(),
		http:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has the key material to submit.
func (c *ReportingClient) Configured() bool {
	return c.cfg.CertKeyPath != "" && c.cfg.DeviceUUID != ""
}

// Submit signs the XML document, mints the bearer token and POSTs the signed
// payload. It returns the raw response body; a non-2xx status is an error
// carrying that body.
func (c *ReportingClient) Submit(ctx context.Context, xmlData string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("zatca: reporting is not configured (device UUID and key required)")
	}
	cert, err := loadCertificate(c.cfg.CertPath, c.cfg.CertKeyPath)
	if err != nil {
		return "", err
	}

	signedXML, err := c.signer.Sign([]byte(xmlData), cert)
	if err != nil {
		return "", err
	}

	token, err := c.mintToken(cert.PrivateKey.(*rsa.PrivateKey))
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(string(signedXML)))
	if err != nil {
		return "", fmt.Errorf("zatca: build reporting request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("zatca: submit invoice: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("zatca: read reporting response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(body), fmt.Errorf("zatca: reporting API returned %d: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

// mintToken builds the short-lived RS256 bearer token for the reporting API.
func (c *ReportingClient) mintToken(key *rsa.PrivateKey) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.cfg.DeviceUUID,
		Audience:  jwt.ClaimStrings{"https://api.fatoora.gov.sa"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("zatca: sign reporting token: %w", err)
	}
	return signed, nil
}

// loadCertificate reads the PEM certificate and RSA key from disk. The
// certificate is optional (KeyInfo is omitted without it); the key is not.
func loadCertificate(certPath, keyPath string) (tls.Certificate, error) {
	if certPath != "" {
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("zatca: load certificate pair: %w", err)
		}
		if _, ok := cert.PrivateKey.(*rsa.PrivateKey); !ok {
			return tls.Certificate{}, fmt.Errorf("zatca: private key must be RSA")
		}
		return cert, nil
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("zatca: read private key: %w", err)
	}
	key, err := parseRSAPrivateKey(keyPEM)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{PrivateKey: key}, nil
}

func parseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("zatca: no PEM block in private key file")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("zatca: parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("zatca: private key must be RSA")
	}
	return key, nil
}
