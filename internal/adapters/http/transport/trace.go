package transport

import (
	"net/http"
	"net/http/httputil"
	"regexp"

	"github.com/okian/intellinbox/pkg/logger"
)

// Redacted replaces secrets in trace dumps.
const Redacted = "[REDACTED]"

var (
	secretHeader = regexp.MustCompile(`(?mi)^(Authorization|Proxy-Authorization|Cookie|Set-Cookie):[^\r\n]*`)
	secretField  = regexp.MustCompile(`("(?:password|api_token|token)"\s*:\s*)"(?:[^"\\]|\\.)*"`)
)

// redact masks credential headers and JSON secret fields in an HTTP dump.
func redact(dump []byte) string {
	dump = secretHeader.ReplaceAll(dump, []byte("${1}: "+Redacted))
	dump = secretField.ReplaceAll(dump, []byte(`${1}"`+Redacted+`"`))
	return string(dump)
}

// traceTransport logs a dump of the request and response at debug level
// while delegating the real work to another http.RoundTripper.
type traceTransport struct {
	next http.RoundTripper
	log  logger.Logger
}

// Trace wraps next so each round trip is dumped to log with credentials
// masked. A nil next uses http.DefaultTransport; a nil log discards the
// dumps.
func Trace(next http.RoundTripper, log logger.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = logger.Nop()
	}
	return &traceTransport{next: next, log: log}
}

func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	// DumpRequestOut restores the body it reads.
	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		t.log.Debug(ctx, "http request", logger.String("dump", redact(dump)))
	} else {
		t.log.Debug(ctx, "http request dump failed", logger.Error(err))
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.log.Debug(ctx, "http round trip failed", logger.Error(err))
		return resp, err
	}

	if dump, dumpErr := httputil.DumpResponse(resp, true); dumpErr == nil {
		t.log.Debug(ctx, "http response", logger.String("dump", redact(dump)))
	} else {
		t.log.Debug(ctx, "http response dump failed", logger.Error(dumpErr))
	}
	return resp, nil
}
