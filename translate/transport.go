package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Transport performs the HTTP round trips for a Client and returns the raw
// response body. Implementations decide about retries and timeouts.
type Transport interface {
	Get(ctx context.Context, endpoint string) ([]byte, error)
	Post(ctx context.Context, endpoint string, form url.Values) ([]byte, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, truncate(e.Body, 500))
}

// TransportOptions configures an HTTPTransport.
type TransportOptions struct {
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
	// Proxy is an explicit proxy URL. Empty means HTTP_PROXY/HTTPS_PROXY.
	Proxy string
	// Timeout is the per-request timeout. Default: 30s.
	Timeout time.Duration
	// Retries is how many times a failed request is repeated. Default: 0.
	Retries int
	// RetryWait is the initial backoff between retries. Default: 500ms.
	RetryWait time.Duration
	// Logger receives resty's warnings and errors.
	Logger *zerolog.Logger
}

func (o *TransportOptions) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 30 * time.Second
}

func (o *TransportOptions) effectiveRetryWait() time.Duration {
	if o.RetryWait > 0 {
		return o.RetryWait
	}
	return 500 * time.Millisecond
}

// HTTPTransport is the default Transport, built on resty.
type HTTPTransport struct {
	client *resty.Client
}

// NewHTTPTransport returns a transport sending the fixed User-Agent on every
// request.
func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	rc := resty.NewWithClient(makeHTTPClient(opts.Proxy, opts.effectiveTimeout()))
	rc.SetHeader("User-Agent", ua)

	if opts.Logger != nil {
		rc.SetLogger(restyLogger{opts.Logger.With().Str("component", "http").Logger()})
	} else {
		rc.SetLogger(restyLogger{zerolog.Nop()})
	}

	if opts.Retries > 0 {
		wait := opts.effectiveRetryWait()
		rc.SetRetryCount(opts.Retries).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(8 * wait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				code := r.StatusCode()
				return code == http.StatusTooManyRequests || code >= 500
			})
	}

	return &HTTPTransport{client: rc}
}

// Get fetches endpoint.
func (t *HTTPTransport) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return t.do(t.client.R().SetContext(ctx), http.MethodGet, endpoint)
}

// Post sends form as an application/x-www-form-urlencoded body.
func (t *HTTPTransport) Post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req := t.client.R().SetContext(ctx).SetFormDataFromValues(form)
	return t.do(req, http.MethodPost, endpoint)
}

func (t *HTTPTransport) do(req *resty.Request, method, endpoint string) ([]byte, error) {
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redact(endpoint), err)
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), nil
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// restyLogger forwards resty's log lines to zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Error().Msgf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warn().Msgf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debug().Msgf(format, v...) }

// redact drops the query string, which carries the signed request.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	u.RawQuery = ""
	return u.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
