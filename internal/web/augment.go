// Package web augments a query's evidence pool with freshly fetched pages.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/dialectica/internal/cache"
	"github.com/ppiankov/dialectica/internal/metrics"
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// maxPageWords caps how much extracted text one page contributes.
const maxPageWords = 1500

// Augmenter searches the web for a query and turns pages into documents.
type Augmenter struct {
	search     SearchProvider
	fetcher    *Fetcher
	pages      cache.Cache
	pageTTL    time.Duration
	maxResults int
}

// New builds an Augmenter from configuration. Returns nil when web
// augmentation is disabled; a nil Augmenter augments nothing.
func New(cfg *model.Config, pages cache.Cache) *Augmenter {
	if cfg == nil || !cfg.Web.Enabled {
		return nil
	}
	maxResults := cfg.Web.MaxResults
	if maxResults <= 0 {
		maxResults = model.DefaultConfig().Web.MaxResults
	}
	return &Augmenter{
		search:     NewSearchProvider(cfg.Web.SearchURL, cfg.Web.APIKey, nil),
		fetcher:    NewFetcher(cfg.HTTP),
		pages:      pages,
		pageTTL:    cfg.Cache.TTL,
		maxResults: maxResults,
	}
}

// Augment returns web pages relevant to the query as documents with the
// page URL as document id. Pages that cannot be fetched or yield no text
// are skipped; augmentation never fails the query.
func (a *Augmenter) Augment(ctx context.Context, query model.Query) []model.Document {
	if a == nil {
		return nil
	}

	results, err := a.search.Search(ctx, query.Text, a.maxResults)
	if err != nil {
		slog.Warn("web search failed", "query_id", query.ID, "error", err)
		return nil
	}

	var docs []model.Document
	for _, r := range results {
		text, err := a.pageText(ctx, r)
		if err != nil {
			slog.Warn("skipping page", "query_id", query.ID, "url", r.URL, "error", err)
			continue
		}
		if text == "" {
			continue
		}
		docs = append(docs, model.NewDocument(r.URL, textutil.TruncateWords(text, maxPageWords)))
	}

	slog.Debug("augmented evidence pool", "query_id", query.ID, "pages", len(docs))
	return docs
}

// pageText fetches and extracts a page, falling back to the search
// snippet when the page itself is unreachable.
func (a *Augmenter) pageText(ctx context.Context, r SearchResult) (string, error) {
	key := cache.Key("page:" + r.URL)
	if a.pages != nil {
		var cached string
		if cache.GetJSON(a.pages, key, &cached) {
			metrics.CacheHitsTotal.WithLabelValues("web").Inc()
			return cached, nil
		}
		metrics.CacheMissesTotal.WithLabelValues("web").Inc()
	}

	page, err := a.fetcher.FetchWithRetry(ctx, r.URL)
	if err != nil {
		if r.Snippet != "" {
			slog.Debug("using search snippet", "url", r.URL, "error", err)
			return r.Snippet, nil
		}
		return "", err
	}

	text, err := ExtractText(page)
	if err != nil {
		return "", err
	}
	if a.pages != nil {
		if err := cache.SetJSON(a.pages, key, text, a.pageTTL); err != nil {
			slog.Warn("caching page failed", "url", r.URL, "error", err)
		}
	}
	return text, nil
}
