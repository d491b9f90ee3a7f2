package tlscheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the tagged outcome of a certificate check. Unknown means the
// certificate could not be evaluated at all and must never be conflated
// with Invalid downstream.
type State int

const (
	Unknown State = iota
	Valid
	Invalid
)

// CertResult carries the check outcome and a short operator-facing note for
// degraded cases.
type CertResult struct {
	State State
	Note  string
}

// Config drives validator behaviour.
type Config struct {
	Timeout time.Duration
	Port    string
}

// Validator opens a TLS connection and lets the standard verifier check the
// chain, expiry and hostname.
type Validator struct {
	timeout time.Duration
	port    string
}

// NewValidator constructs a validator with defaulted configuration.
func NewValidator(cfg Config) *Validator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	port := cfg.Port
	if port == "" {
		port = "443"
	}
	return &Validator{timeout: timeout, port: port}
}

// Validate performs the handshake against host:443. Explicit verification
// failures return Invalid; connection errors, timeouts and DNS failures
// return Unknown. Callers skip the check entirely for non-https URLs.
func (v *Validator) Validate(ctx context.Context, host string) CertResult {
	if host == "" {
		return CertResult{State: Unknown, Note: "domain missing"}
	}

	dialCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: v.timeout},
		Config:    &tls.Config{ServerName: host},
	}
	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, v.port))
	if err == nil {
		_ = conn.Close()
		return CertResult{State: Valid}
	}

	result := classifyDialError(err)
	logrus.WithError(err).WithFields(logrus.Fields{
		"host":  host,
		"state": result.State,
	}).Debug("tls validation did not succeed")
	return result
}

// classifyDialError separates explicit certificate rejections from
// connectivity problems.
func classifyDialError(err error) CertResult {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return CertResult{State: Invalid, Note: firstError(certErr.Err)}
	}

	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &invalidErr) {
		return CertResult{State: Invalid, Note: invalidErr.Error()}
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return CertResult{State: Invalid, Note: hostErr.Error()}
	}
	var authErr x509.UnknownAuthorityError
	if errors.As(err, &authErr) {
		return CertResult{State: Invalid, Note: authErr.Error()}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CertResult{State: Unknown, Note: "dns lookup failed: " + dnsErr.Name}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CertResult{State: Unknown, Note: "tls connection timed out"}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CertResult{State: Unknown, Note: "tls connection timed out"}
	}

	return CertResult{State: Unknown, Note: err.Error()}
}

func firstError(err error) string {
	if err == nil {
		return "certificate verification failed"
	}
	return err.Error()
}
