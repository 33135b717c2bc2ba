package mapping

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/c360/mapengine/pathlang"
	"github.com/c360/mapengine/transform"
)

// Store holds exactly one current Rules value, exposed via an atomic
// reference: single-writer (the Reload Controller), many-reader (the
// per-record path). Readers call Current once per record and use the
// snapshot throughout, so a swap mid-record never produces a torn read.
type Store struct {
	current   atomic.Pointer[Rules]
	sf        singleflight.Group
	pathCache *pathlang.Cache
	encryptor *transform.Encryptor
	logger    *slog.Logger
	metrics   *storeMetrics
}

// NewStore constructs an empty Store (Current returns nil until the
// first successful TryAdopt). logger defaults to slog.Default() if nil;
// metrics may be nil to disable metrics.
func NewStore(pathCache *pathlang.Cache, encryptor *transform.Encryptor, logger *slog.Logger, metrics *storeMetrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if pathCache == nil {
		pathCache = pathlang.NewCache()
	}
	if encryptor == nil {
		encryptor = transform.NewEncryptor()
	}
	return &Store{
		pathCache: pathCache,
		encryptor: encryptor,
		logger:    logger,
		metrics:   metrics,
	}
}

// Current returns the currently adopted Rules, or nil if nothing has
// been adopted yet.
func (s *Store) Current() *Rules {
	return s.current.Load()
}

// Lookup resolves a mapping by connector name with topic as fallback,
// per the Mapping Store precedence rule. A miss records a metric; the
// caller is expected to pass the record through unchanged.
func (s *Store) Lookup(connector, topic string) (*TopicMapping, bool) {
	tm, ok := s.Current().Lookup(connector, topic)
	if !ok {
		s.metrics.recordLookupMiss()
	}
	return tm, ok
}

// TryAdopt parses, validates, and atomically swaps in a freshly compiled
// Rules value built from data. On any failure the current value is left
// unchanged (last-known-good semantics). Concurrent TryAdopt calls
// carrying byte-identical content collapse into a single parse+validate
// via singleflight, since the Reload Controller and a force-reload
// request can race on the same body.
func (s *Store) TryAdopt(data []byte) error {
	key := contentKey(data)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return Parse(data, s.pathCache, s.encryptor)
	})
	if err != nil {
		s.metrics.recordAdopt("error")
		return fmt.Errorf("mapping: adoption failed: %w", err)
	}

	rules := v.(*Rules)
	if old := s.current.Load(); old != nil && rules.Version != 0 && old.Version != 0 && rules.Version < old.Version {
		s.logger.Warn("adopted mapping declares a lower version than current",
			"current_version", old.Version, "new_version", rules.Version)
	}

	s.current.Store(rules)
	s.metrics.recordAdopt("success")
	s.metrics.setCurrentVersion(rules.Version)
	return nil
}

func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
