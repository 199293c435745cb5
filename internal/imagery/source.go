package imagery

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/coolcity/heatscan/internal/resilience"
)

// Options configures a Source.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	RateLimit  rate.Limit // fetches per second, 0 = unlimited
	RateBurst  int
	Retry      resilience.RetryConfig
	CacheSize  int
	CacheTTL   time.Duration
	HTTPClient *http.Client // optional override, mainly for tests
}

// Source fetches and decodes raster images referenced by http(s):// or
// ftp:// URLs or local file paths. Network fetches are rate limited, retried
// on transient failures, and cached by reference. Implements
// render.ImageSource.
type Source struct {
	client    *http.Client
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
	cache     *Cache
	userAgent string
	timeout   time.Duration
}

// NewSource creates a Source with the given options.
func NewSource(opts Options) *Source {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "heatscan/1.0"
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = time.Hour
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}
	return &Source{
		client:    client,
		limiter:   limiter,
		retry:     opts.Retry,
		cache:     NewCache(opts.CacheSize, opts.CacheTTL),
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
	}
}

// Load fetches and decodes the image at ref.
func (s *Source) Load(ctx context.Context, ref string) (image.Image, error) {
	data, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "imagery: decode %s", ref)
	}
	zap.L().Debug("imagery: loaded image",
		zap.String("ref", ref),
		zap.String("format", format),
		zap.Int("bytes", len(data)),
	)
	return img, nil
}

// CacheStats exposes fetch cache counters for observability.
func (s *Source) CacheStats() CacheStats {
	return s.cache.Stats()
}

func (s *Source) fetch(ctx context.Context, ref string) ([]byte, error) {
	if cached := s.cache.Get(ref); cached != nil {
		return cached, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, eris.Wrapf(err, "imagery: parse ref %q", ref)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "imagery: rate limit")
		}
	}

	var data []byte
	switch u.Scheme {
	case "", "file":
		path := u.Path
		if u.Scheme == "" {
			path = ref
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "imagery: read file %s", path)
		}
	case "http", "https":
		data, err = resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]byte, error) {
			return s.fetchHTTP(ctx, ref)
		})
	case "ftp":
		data, err = resilience.DoVal(ctx, s.retry, func(_ context.Context) ([]byte, error) {
			return s.fetchFTP(u)
		})
	default:
		return nil, eris.Errorf("imagery: unsupported scheme %q in ref %q", u.Scheme, ref)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Put(ref, data)
	return data, nil
}

func (s *Source) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, eris.Wrap(err, "imagery: build request")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "imagery: fetch %s", ref)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("imagery: %s returned status %d", ref, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "imagery: read body")
	}
	return data, nil
}

// fetchFTP downloads an archival raster over FTP. Anonymous login applies
// unless the URL carries credentials.
func (s *Source) fetchFTP(u *url.URL) ([]byte, error) {
	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "21")
	}
	if u.Path == "" {
		return nil, eris.Errorf("imagery: empty path in ftp ref %q", u.String())
	}

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(s.timeout))
	if err != nil {
		return nil, eris.Wrapf(err, "imagery: ftp dial %s", host)
	}
	defer func() { _ = conn.Quit() }()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, eris.Wrapf(err, "imagery: ftp login %s", host)
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "imagery: ftp retrieve %s", u.Path)
	}
	defer func() { _ = resp.Close() }()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, eris.Wrap(err, "imagery: ftp read")
	}
	return data, nil
}
