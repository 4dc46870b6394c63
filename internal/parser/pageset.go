package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"coverscan/internal/appform"
	"coverscan/internal/port"
)

// PageSetOptions bounds the page fan-out shared by all submissions.
type PageSetOptions struct {
	RequestsPerMinute int
	Concurrency       int
	CacheTTL          time.Duration
}

// PageSet runs one provider over an ordered page list with bounded
// concurrency, a shared request rate limit, and a content-addressed result
// cache so re-processing a submission does not re-bill unchanged pages.
// Implements port.PageSetParser.
type PageSet struct {
	parser      port.PageParser
	limiter     *rate.Limiter
	cache       *gocache.Cache
	concurrency int
}

// NewPageSet wraps a provider with the shared fan-out controls.
func NewPageSet(p port.PageParser, opts PageSetOptions) *PageSet {
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	conc := opts.Concurrency
	if conc <= 0 {
		conc = 3
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PageSet{
		parser:      p,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		cache:       gocache.New(ttl, 10*time.Minute),
		concurrency: conc,
	}
}

// Name reports the underlying provider chain.
func (s *PageSet) Name() string {
	return s.parser.Name()
}

// ParsePages fans the pages out to the provider and returns one partial
// record per page, in page order. The first failure cancels the remaining
// pages; a rate-limit error surfaces as-is so the caller can queue a retry.
func (s *PageSet) ParsePages(ctx context.Context, pages []port.PageInput) ([]*appform.Record, error) {
	out := make([]*appform.Record, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range pages {
		i := i
		g.Go(func() error {
			key := s.cacheKey(pages[i])
			if hit, ok := s.cache.Get(key); ok {
				out[i] = hit.(*appform.Record)
				return nil
			}

			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			rec, err := s.parser.ParsePage(gctx, pages[i])
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}

			s.cache.Set(key, rec, gocache.DefaultExpiration)
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// cacheKey addresses a result by page content, form type, and provider, so a
// provider or prompt-affecting change never serves stale records.
func (s *PageSet) cacheKey(input port.PageInput) string {
	sum := sha256.Sum256(input.FileBytes)
	return hex.EncodeToString(sum[:]) + "|" + string(input.FormType) + "|" + s.parser.Name()
}
