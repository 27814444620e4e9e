// Package socrata downloads assessor extracts from a Socrata open data portal.
package socrata

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/cache"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/metrics"
)

// ErrPermanent marks a failure that retrying will not fix, such as a
// malformed query or a rejected app token.
var ErrPermanent = errors.New("socrata: permanent failure")

// APIError is a non-2xx response. Socrata reports problems as {code, message}.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Body    string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" || e.Message != "" {
		return fmt.Sprintf("status %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if err := json.Unmarshal(body, e); err != nil || (e.Code == "" && e.Message == "") {
		e.Code, e.Message = "", ""
		if len(body) > 512 {
			body = body[:512]
		}
		e.Body = string(bytes.TrimSpace(body))
	}
	return e
}

// retryable reports whether a status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Client fetches CSV exports with rate limiting, retries and caching.
type Client struct {
	base  string
	token string
	hc    *http.Client
	rl    *rate.Limiter
	cache cache.Cache

	newBackOff func() backoff.BackOff
}

// NewClient returns a Client. rps limits request starts; c may be nil.
func NewClient(base, token string, rps float64, timeout time.Duration, c cache.Cache) *Client {
	if rps <= 0 {
		rps = 2
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &Client{
		base:  base,
		token: token,
		hc:    &http.Client{Timeout: timeout},
		rl:    rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		cache: c,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			bo.MaxElapsedTime = 5 * time.Minute
			return bo
		},
	}
}

// Download returns the dataset as CSV, from the cache when possible.
func (c *Client) Download(ctx context.Context, d Dataset) ([]byte, error) {
	u := d.URL(c.base)

	if body, ok, err := c.cache.Get(ctx, u); err != nil {
		log.Warn().Err(err).Str("dataset", d.Name).Msg("cache read failed")
	} else if ok {
		log.Debug().Str("dataset", d.Name).Int("bytes", len(body)).Msg("cache hit")
		return body, nil
	}

	var body []byte
	operation := func() error {
		if err := c.rl.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		b, err := c.get(ctx, d, u)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("dataset", d.Name).Dur("retry_in", wait).Msg("download failed, retrying")
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		return nil, fmt.Errorf("download %s: %w", d.Name, err)
	}

	out, err := recode(body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w: %w", d.Name, ErrPermanent, err)
	}
	if err := c.cache.Set(ctx, u, out); err != nil {
		log.Warn().Err(err).Str("dataset", d.Name).Msg("cache write failed")
	}
	return out, nil
}

// get performs one attempt. Errors that should not be retried are wrapped in
// backoff.Permanent.
func (c *Client) get(ctx context.Context, d Dataset, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrPermanent, err))
	}
	if c.token != "" {
		req.Header.Set("X-App-Token", c.token)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.ObserveDownload(d.Name, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.ObserveDownload(d.Name, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := newAPIError(resp.StatusCode, body)
		if retryable(resp.StatusCode) {
			return nil, apiErr
		}
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrPermanent, apiErr))
	}
	return body, nil
}

// recode parses the export and writes it back with minimal quoting.
func recode(body []byte) ([]byte, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Fetch downloads every dataset into dir concurrently. With skipExisting,
// datasets whose file is already present are left alone.
func (c *Client) Fetch(ctx context.Context, dir string, datasets []Dataset, skipExisting bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if c.token == "" {
		log.Warn().Msg("no Socrata app token configured; the portal may throttle or truncate responses")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, d := range datasets {
		d := d // per-iteration copy for the goroutine (module targets go 1.21)
		path := filepath.Join(dir, d.FileName)
		if skipExisting {
			if _, err := os.Stat(path); err == nil {
				log.Info().Str("dataset", d.Name).Str("path", path).Msg("already downloaded, skipping")
				continue
			}
		}
		g.Go(func() error {
			start := time.Now()
			body, err := c.Download(ctx, d)
			if err != nil {
				return err
			}
			if err := writeFileAtomic(path, body); err != nil {
				return fmt.Errorf("save %s: %w", d.Name, err)
			}
			log.Info().
				Str("dataset", d.Name).
				Str("path", path).
				Int("bytes", len(body)).
				Dur("took", time.Since(start)).
				Msg("dataset saved")
			return nil
		})
	}
	return g.Wait()
}

// writeFileAtomic replaces path so a failed run never leaves half a file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
