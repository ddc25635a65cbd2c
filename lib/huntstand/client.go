package huntstand

import (
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"huntstand/lib/telemetry"

	"github.com/certifi/gocertifi"
	"github.com/go-resty/resty/v2"
)

const requestTimeout = time.Second * 15

// statuses the transport retries automatically, same set for GET and POST
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	opts     ClientOptions
	insecure bool
}

type ClientOptions struct {
	BaseUrl string
	// transient-error retries, 0 means the default of 3
	RetryCount int
	// seed for the exponential backoff between retries,
	// 0 means the default of 300ms
	RetryWait time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	retryCount := opts.RetryCount
	if retryCount == 0 {
		retryCount = 3
	}
	retryWait := opts.RetryWait
	if retryWait == 0 {
		retryWait = time.Millisecond * 300
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetTimeout(requestTimeout)

	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; HuntStandExporter/1.0)")
	client.SetHeader("X-Requested-With", "XMLHttpRequest")
	client.SetHeader("Referer", opts.BaseUrl+"/")
	client.SetHeader("Accept", "application/json, text/javascript, */*; q=0.01")

	client.SetRetryCount(retryCount)
	client.SetRetryWaitTime(retryWait)
	client.SetRetryMaxWaitTime(time.Second * 10)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil || res == nil {
			return false
		}
		return retryStatuses[res.StatusCode()]
	})

	client.SetTLSClientConfig(&tls.Config{RootCAs: trustedRoots()})

	telemetry.InstrumentResty(client, "huntstand/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		opts:    opts,
	}
	return c, nil
}

// prefers the bundled certifi CA list, the platform trust
// store is used when the bundle cannot be loaded
func trustedRoots() *x509.CertPool {
	pool, err := gocertifi.CACerts()
	if err != nil {
		slog.Debug("certifi bundle unavailable, using platform trust store", "err", err)
		return nil
	}
	return pool
}

// DisableTLSVerify turns off certificate verification for the rest of the
// run. Insecure, only used as a fallback when the service root is
// unreachable due to a TLS error.
func (c *Client) DisableTLSVerify() {
	c.insecure = true
	c.Http.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	slog.Warn("TLS certificate verification DISABLED for this run (insecure)")
}

// Clone builds an independent client carrying the same headers and cookie
// values, so concurrent per-area fetches don't race on shared client state.
func (c *Client) Clone() (*Client, error) {
	clone, err := NewClient(c.opts)
	if err != nil {
		return nil, err
	}
	for name, values := range c.Http.Header {
		for _, v := range values {
			clone.Http.Header.Set(name, v)
		}
	}
	clone.Http.GetClient().Jar.SetCookies(
		c.BaseUrl,
		c.Http.GetClient().Jar.Cookies(c.BaseUrl),
	)
	if c.insecure {
		clone.insecure = true
		clone.Http.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	return clone, nil
}

// Cookie returns the value of a cookie currently held for the service
// domain, or "" when absent.
func (c *Client) Cookie(name string) string {
	for _, cookie := range c.Http.GetClient().Jar.Cookies(c.BaseUrl) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) setCookie(name, value string) {
	c.Http.GetClient().Jar.SetCookies(c.BaseUrl, []*http.Cookie{{
		Name:  name,
		Value: value,
		Path:  "/",
	}})
}
