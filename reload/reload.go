// Package reload implements the background Reload Controller: a single
// timer-driven loop that polls a remotestore.Source for a changed
// mapping document and adopts it into a mapping.Store, independent of
// the per-record hot path.
package reload

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/c360/mapengine/remotestore"
)

// Adopter is the subset of mapping.Store the controller depends on.
// Defined here (rather than imported as *mapping.Store directly) so the
// controller can be tested against a fake without pulling in the whole
// mapping package.
type Adopter interface {
	TryAdopt(data []byte) error
}

// Config configures a Controller.
type Config struct {
	// PollInterval is the background poll cadence. Defaults to 30s.
	PollInterval time.Duration

	// ForceReloadBurst/Rate bound how often ForceReload may bypass
	// change detection. Defaults to 1 request per 10s, burst 1.
	ForceReloadRate  rate.Limit
	ForceReloadBurst int

	// ShutdownGrace bounds how long Stop waits for an in-flight poll
	// to finish before returning. Defaults to 5s.
	ShutdownGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.ForceReloadRate <= 0 {
		c.ForceReloadRate = rate.Every(10 * time.Second)
	}
	if c.ForceReloadBurst <= 0 {
		c.ForceReloadBurst = 1
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 5 * time.Second
	}
	return c
}

// Controller runs the polling loop described in the Mapping Store's
// reload contract: a metadata probe first, a content-hash fallback when
// the source exposes no entity tag (or to periodically re-verify an
// unchanged tag), and a bounded retry around every remote call.
type Controller struct {
	source  remotestore.Source
	adopter Adopter
	cfg     Config
	backoff backoffConfig
	logger  *slog.Logger
	metrics *controllerMetrics

	limiter *rate.Limiter

	mu        sync.Mutex
	prevETag  string
	prevHash  string
	haveState bool

	forceCh  chan chan error
	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewController constructs a Controller. logger defaults to
// slog.Default() if nil; metrics may be nil to disable metrics.
func NewController(source remotestore.Source, adopter Adopter, cfg Config, logger *slog.Logger, metrics *controllerMetrics) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Controller{
		source:   source,
		adopter:  adopter,
		cfg:      cfg,
		backoff:  defaultBackoff(),
		logger:   logger,
		metrics:  metrics,
		limiter:  rate.NewLimiter(cfg.ForceReloadRate, cfg.ForceReloadBurst),
		forceCh:  make(chan chan error),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run starts the background polling loop and blocks until ctx is
// cancelled or Stop is called. Intended to be run in its own goroutine.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	// Seed the mapping store on startup so the service does not begin
	// life with an empty Rules value.
	c.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case <-ticker.C:
			c.poll(ctx)
		case reply := <-c.forceCh:
			reply <- c.forcePoll(ctx)
		}
	}
}

// Stop signals the run loop to exit and waits up to the configured
// grace window for an in-flight poll to finish.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.shutdown)
	})
	select {
	case <-c.done:
	case <-time.After(c.cfg.ShutdownGrace):
		c.logger.Warn("reload controller did not shut down within grace window")
	}
}

// ForceReload bypasses change detection and fetches+adopts immediately,
// subject to the force-reload rate limit. Safe to call concurrently
// with the background loop; requests are serialized onto it.
func (c *Controller) ForceReload(ctx context.Context) error {
	if !c.limiter.Allow() {
		c.metrics.recordForceReload("limited")
		return fmt.Errorf("reload: force reload rate limit exceeded")
	}

	reply := make(chan error, 1)
	select {
	case c.forceCh <- reply:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}

	select {
	case err := <-reply:
		if err != nil {
			c.metrics.recordForceReload("error")
			return err
		}
		c.metrics.recordForceReload("accepted")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) forcePoll(ctx context.Context) error {
	data, err := c.fetchWithRetry(ctx)
	if err != nil {
		c.metrics.recordPoll("failed")
		return err
	}
	if err := c.adopt(ctx, data); err != nil {
		c.metrics.recordPoll("failed")
		return err
	}
	c.metrics.recordPoll("adopted")
	c.metrics.recordPollTime(time.Now().Unix())
	return nil
}

// poll performs one change-detection cycle and logs (rather than
// returns) any failure, since it runs unattended off the ticker.
func (c *Controller) poll(ctx context.Context) {
	res, err := c.detectChange(ctx)
	c.metrics.recordPollTime(time.Now().Unix())
	if err != nil {
		c.logger.Error("reload: change detection failed", "error", err)
		c.metrics.recordPoll("failed")
		return
	}
	if !res.changed {
		c.metrics.recordPoll("unchanged")
		return
	}

	data := res.data
	if data == nil {
		data, err = c.fetchWithRetry(ctx)
		if err != nil {
			c.logger.Error("reload: fetch failed", "error", err)
			c.metrics.recordPoll("failed")
			return
		}
	}
	if err := c.adopt(ctx, data); err != nil {
		c.logger.Error("reload: adoption failed", "error", err)
		c.metrics.recordPoll("failed")
		return
	}
	c.metrics.recordPoll("adopted")
}

// changeResult is detectChange's verdict. data is non-nil when the hash
// fallback path already had to fetch the body to reach that verdict, so
// the caller can reuse it instead of fetching a second time.
type changeResult struct {
	changed bool
	data    []byte
}

// detectChange implements the two-phase change probe: an
// ETag comparison when both sides expose one, with a content-hash
// fallback whenever the tags are equal (periodic re-verification) or
// either side lacks a usable tag. Differing present ETags are trusted
// without a hash check; everything else is resolved by hashing the
// fetched body. The very first successful probe always reports a
// change so the initial adoption happens.
func (c *Controller) detectChange(ctx context.Context) (changeResult, error) {
	var meta remotestore.Metadata
	err := withRetry(ctx, c.backoff, func() error {
		var statErr error
		meta, statErr = c.source.Stat(ctx)
		return statErr
	})
	if err != nil {
		return changeResult{}, fmt.Errorf("reload: stat failed: %w", err)
	}

	c.mu.Lock()
	haveState := c.haveState
	prevETag := c.prevETag
	c.mu.Unlock()

	if !haveState {
		return changeResult{changed: true}, nil
	}

	if meta.ETag != "" && prevETag != "" && meta.ETag != prevETag {
		return changeResult{changed: true}, nil
	}

	// Either the tags are equal (still re-verified via hash) or one or
	// both sides lack a usable ETag: fetch the body now and compare its
	// hash to the last-adopted content hash.
	data, err := c.fetchWithRetry(ctx)
	if err != nil {
		return changeResult{}, err
	}
	hash := contentHash(data)

	c.mu.Lock()
	changed := hash != c.prevHash
	c.mu.Unlock()

	return changeResult{changed: changed, data: data}, nil
}

func (c *Controller) fetchWithRetry(ctx context.Context) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, c.backoff, func() error {
		var fetchErr error
		data, fetchErr = c.source.Fetch(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("reload: fetch failed: %w", err)
	}
	return data, nil
}

// adopt hands data to the Adopter unconditionally: by the time it is
// called the swap has already been decided — detectChange said changed
// (a differing ETag swaps even if the body happens to hash the same,
// e.g. a metadata-only re-upload), or a force reload bypassed change
// detection entirely. On success the content-hash and ETag baselines
// are updated for the next poll's comparison.
func (c *Controller) adopt(ctx context.Context, data []byte) error {
	if err := c.adopter.TryAdopt(data); err != nil {
		return err
	}

	c.mu.Lock()
	c.prevHash = contentHash(data)
	c.haveState = true
	c.mu.Unlock()
	c.refreshETag(ctx)
	return nil
}

func (c *Controller) refreshETag(ctx context.Context) {
	meta, err := c.source.Stat(ctx)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.prevETag = meta.ETag
	c.mu.Unlock()
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// ErrStopped is returned by ForceReload when the controller has already
// shut down.
var ErrStopped = errors.New("reload: controller is stopped")
