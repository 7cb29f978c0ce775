// Package literature adds caching and source selection in front of the
// paper search backends.
package literature

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/matsen/rexplorer/internal/asta"
	"github.com/matsen/rexplorer/internal/logger"
	"github.com/matsen/rexplorer/internal/metaso"
	"github.com/matsen/rexplorer/internal/nodeid"
	"github.com/matsen/rexplorer/internal/paper"
	"github.com/matsen/rexplorer/internal/service"
)

// DefaultCacheSize is the number of keywords whose results are kept.
const DefaultCacheSize = 256

// Source names accepted by NewFinder.
const (
	SourceMetaso = "metaso"
	SourceASTA   = "asta"
)

// Cached memoizes a LiteratureFinder by normalized keyword. Concurrent
// lookups for the same keyword share one upstream call. Failures are not
// cached. Entries and Seed carry the cache across processes.
type Cached struct {
	next  service.LiteratureFinder
	cache *lru.Cache[string, []paper.Paper]
	group singleflight.Group
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next service.LiteratureFinder, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []paper.Paper](size)
	if err != nil {
		return nil, fmt.Errorf("creating literature cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// FindLiterature returns cached papers for keyword or asks the wrapped finder.
func (c *Cached) FindLiterature(ctx context.Context, keyword string) ([]paper.Paper, error) {
	key := nodeid.Normalize(keyword)
	if papers, ok := c.cache.Get(key); ok {
		return clonePapers(papers), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		papers, err := c.next.FindLiterature(ctx, keyword)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, papers)
		return papers, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePapers(v.([]paper.Paper)), nil
}

// Len returns the number of cached keywords.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Entry is one cached result in persisted form.
type Entry struct {
	Keyword string        `json:"keyword"`
	Papers  []paper.Paper `json:"papers"`
}

// Entries returns the cached results from least to most recently used.
func (c *Cached) Entries() []Entry {
	keys := c.cache.Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if papers, ok := c.cache.Peek(k); ok {
			entries = append(entries, Entry{Keyword: k, Papers: clonePapers(papers)})
		}
	}
	return entries
}

// Seed loads persisted entries in order, so the last one counts as most
// recently used. Entries beyond the cache size evict the oldest.
func (c *Cached) Seed(entries []Entry) {
	for _, e := range entries {
		key := nodeid.Normalize(e.Keyword)
		if key == "" || e.Papers == nil {
			continue
		}
		c.cache.Add(key, clonePapers(e.Papers))
	}
}

func clonePapers(papers []paper.Paper) []paper.Paper {
	if papers == nil {
		return nil
	}
	out := make([]paper.Paper, len(papers))
	copy(out, papers)
	return out
}

// Options selects and configures a backend for NewFinder.
type Options struct {
	Source       string // SourceMetaso (default) or SourceASTA
	MetasoAPIKey string
	ASTAAPIKey   string
	Size         int // papers per keyword
	CacheSize    int
	Logger       *logger.Logger
}

// NewFinder builds the configured backend behind a cache.
func NewFinder(opts Options) (*Cached, error) {
	var next service.LiteratureFinder
	switch opts.Source {
	case "", SourceMetaso:
		mopts := []metaso.ClientOption{metaso.WithSize(opts.Size)}
		if opts.MetasoAPIKey != "" {
			mopts = append(mopts, metaso.WithAPIKey(opts.MetasoAPIKey))
		}
		if opts.Logger != nil {
			mopts = append(mopts, metaso.WithLogger(opts.Logger))
		}
		next = metaso.NewClient(mopts...)
	case SourceASTA:
		aopts := []asta.ClientOption{asta.WithLimit(opts.Size)}
		if opts.ASTAAPIKey != "" {
			aopts = append(aopts, asta.WithAPIKey(opts.ASTAAPIKey))
		}
		if opts.Logger != nil {
			aopts = append(aopts, asta.WithLogger(opts.Logger))
		}
		next = asta.NewClient(aopts...)
	default:
		return nil, fmt.Errorf("unknown literature source %q (want %s or %s)", opts.Source, SourceMetaso, SourceASTA)
	}
	return NewCached(next, opts.CacheSize)
}
