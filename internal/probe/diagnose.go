package probe

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/hybridrag/ragctl/internal/endpoint"
)

// DiagnoseStatus maps an HTTP error status from the endpoint to an
// operator-facing hint about the likely configuration cause.
func DiagnoseStatus(status int, provider endpoint.Provider) string {
	switch status {
	case 401:
		if provider == endpoint.ProviderAzure {
			return "authentication rejected: check the stored API key, and that the 'api-key' header form is correct for this endpoint"
		}
		return "authentication rejected: check the stored API key, and that the endpoint expects a Bearer token"
	case 403:
		return "access forbidden: key may lack access to this resource, or a corporate firewall/VPN policy is blocking the call"
	case 404:
		if provider == endpoint.ProviderAzure {
			return "not found: deployment name or api-version is likely wrong, or the URL path is malformed (run 'ragctl resolve' and check problems)"
		}
		return "not found: the endpoint path is likely wrong for this API (expected /v1/chat/completions)"
	case 429:
		return "rate limited: quota exhausted or too many requests; wait and retry"
	}
	if status >= 500 {
		return fmt.Sprintf("server error (%d): the endpoint itself is failing; not a local configuration problem", status)
	}
	return fmt.Sprintf("unexpected status %d", status)
}

// DiagnoseError maps a transport-level failure to a hint.
func DiagnoseError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out: endpoint unreachable or very slow; check network and the probe timeout setting"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out: endpoint unreachable or very slow; check network and the probe timeout setting"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNS lookup failed: hostname is wrong, or the endpoint is intranet-only and you are off VPN"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connection failed: check VPN connection and firewall rules"
	}

	return "request failed: " + err.Error()
}
