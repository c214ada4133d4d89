// Package crawler downloads every image referenced by one web page.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/go-scripts/imagegrab/internal/extract"
	"github.com/go-scripts/imagegrab/internal/fetch"
	"github.com/go-scripts/imagegrab/internal/resolve"
	"github.com/go-scripts/imagegrab/internal/robots"
	"github.com/go-scripts/imagegrab/internal/types"
	"github.com/go-scripts/imagegrab/internal/writer"
)

// DefaultConcurrency is the number of simultaneous resource fetches
const DefaultConcurrency = 10

// ErrInvalidPageURL is returned when the page URL is not an absolute http(s) URL
var ErrInvalidPageURL = errors.New("invalid page URL")

// Configuration holds the crawler settings
type Configuration struct {
	PageURL       string
	OutputDir     string
	Concurrency   int
	UserAgent     string
	Timeout       time.Duration
	MaxBodyBytes  int64
	RateLimit     float64 // requests per second across all resource fetches, 0 disables
	RespectRobots bool
}

// Reporter receives progress as the run advances. Calls to Record come
// from a single goroutine.
type Reporter interface {
	StartPage(url string)
	FinishPage()
	SetTotal(n int)
	Record(r types.Result)
}

type nopReporter struct{}

func (nopReporter) StartPage(string) {}
func (nopReporter) FinishPage() {}
func (nopReporter) SetTotal(int) {}
func (nopReporter) Record(types.Result) {}

// Crawler manages one download run
type Crawler struct {
	config     Configuration
	pageClient *fetch.Client
	client     *fetch.Client
	limiter    *rate.Limiter
	robots     *robots.Checker
	reporter   Reporter
	logger     *log.Logger
}

// Option customises a Crawler
type Option func(*Crawler)

// WithReporter sends progress to r
func WithReporter(r Reporter) Option {
	return func(c *Crawler) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithLogger replaces the default logger
func WithLogger(l *log.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new Crawler instance
func New(config Configuration, opts ...Option) *Crawler {
	if config.Concurrency < 1 {
		config.Concurrency = DefaultConcurrency
	}

	fetchOpts := fetch.Options{
		UserAgent:    config.UserAgent,
		Timeout:      config.Timeout,
		MaxBodyBytes: config.MaxBodyBytes,
	}
	pageClient := fetch.New(fetchOpts)
	fetchOpts.MaxConnsPerHost = config.Concurrency
	client := fetch.New(fetchOpts)

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	c := &Crawler{
		config:     config,
		pageClient: pageClient,
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		reporter:   nopReporter{},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if config.RespectRobots {
		ua := config.UserAgent
		if ua == "" {
			ua = fetch.DefaultUserAgent
		}
		c.robots = robots.NewChecker(client, ua)
	}
	return c
}

// Run fetches the page, discovers its images and downloads them. Only an
// unusable page URL, a failed page fetch or an uncreatable destination
// directory end the run with an error; every per-resource failure is
// reported in the returned summary.
func (c *Crawler) Run(ctx context.Context) (*types.Summary, error) {
	logger := c.logger.With("run", uuid.NewString())

	pageURL, err := parsePageURL(c.config.PageURL)
	if err != nil {
		return nil, err
	}

	w, err := writer.New(c.config.OutputDir)
	if err != nil {
		return nil, err
	}

	summary := &types.Summary{
		PageURL:     pageURL.String(),
		Destination: w.Dir(),
	}

	c.reporter.StartPage(pageURL.String())
	page, err := c.pageClient.Fetch(ctx, pageURL.String())
	c.reporter.FinishPage()
	if err != nil {
		logger.Error("page fetch failed", "url", pageURL, "error", err)
		return nil, fmt.Errorf("fetch page %s: %w", pageURL, err)
	}
	summary.BaseURL = page.FinalURL.String()

	text := fetch.DecodePage(page.Body, page.ContentType)
	locators := resolve.Resolve(extract.Collect(text), page.FinalURL)
	summary.Discovered = len(locators)
	c.reporter.SetTotal(len(locators))
	logger.Info("discovered images", "page", summary.BaseURL, "count", len(locators))

	c.download(ctx, logger, w, locators, summary)

	logger.Info("run complete",
		"saved", summary.Saved,
		"duplicates", summary.Duplicates,
		"failed", summary.Failed,
		"unique", w.Unique(),
		"dest", summary.Destination)
	return summary, nil
}

// download fans out one task per locator, at most Concurrency in flight,
// and folds the results into summary from a single goroutine.
func (c *Crawler) download(ctx context.Context, logger *log.Logger, w *writer.FileWriter, locators []types.Locator, summary *types.Summary) {
	sem := semaphore.NewWeighted(int64(c.config.Concurrency))
	results := make(chan types.Result, len(locators))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			c.reporter.Record(r)
			summary.Add(r)
		}
	}()

	var wg sync.WaitGroup
	for _, loc := range locators {
		if err := sem.Acquire(ctx, 1); err != nil {
			results <- failed(loc, time.Time{}, err)
			continue
		}
		wg.Add(1)
		go func(loc types.Locator) {
			defer wg.Done()
			defer sem.Release(1)
			results <- c.fetchAndSave(ctx, logger, w, loc)
		}(loc)
	}

	wg.Wait()
	close(results)
	<-done
}

func (c *Crawler) fetchAndSave(ctx context.Context, logger *log.Logger, w *writer.FileWriter, loc types.Locator) types.Result {
	start := time.Now()
	logger = logger.With("url", string(loc))

	if c.robots != nil {
		if err := c.robots.Allowed(ctx, string(loc)); err != nil {
			logger.Debug("skipping resource", "error", err)
			return failed(loc, start, err)
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return failed(loc, start, err)
	}

	resp, err := c.client.Fetch(ctx, string(loc))
	if err != nil {
		logger.Warn("resource fetch failed", "error", err)
		return failed(loc, start, err)
	}

	ext := fetch.Extension(resp.ContentType, string(loc))
	path, duplicate, err := w.Save(string(loc), ext, resp.Body)
	switch {
	case err != nil:
		logger.Warn("resource save failed", "error", err)
		return failed(loc, start, err)
	case duplicate:
		logger.Debug("duplicate content", "latency", resp.Latency)
		return types.Result{Locator: loc, Outcome: types.OutcomeDuplicate, Duration: time.Since(start)}
	default:
		logger.Debug("saved", "path", path, "bytes", len(resp.Body), "latency", resp.Latency)
		return types.Result{Locator: loc, Outcome: types.OutcomeSaved, Path: path, Duration: time.Since(start)}
	}
}

func failed(loc types.Locator, start time.Time, err error) types.Result {
	r := types.Result{Locator: loc, Outcome: types.OutcomeFailed, Reason: err.Error()}
	if !start.IsZero() {
		r.Duration = time.Since(start)
	}
	return r
}

func parsePageURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPageURL, raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidPageURL, raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w %q: missing host", ErrInvalidPageURL, raw)
	}
	return u, nil
}
