package evidence

import (
	"context"
	"log/slog"
	"time"
	"unicode"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sweetpotato0/odialingua/pkg/logging"
)

// SourceClient fetches raw snippet text from one evidence source. Fetch may
// return an error; the gatherer absorbs it into the absence marker.
type SourceClient interface {
	Source() Source
	Fetch(ctx context.Context, query string) (string, error)
}

// Translator normalises a query to the common working language before search
// dispatch. Implementations must be safe to call with text in any script.
type Translator interface {
	EnsureEnglish(ctx context.Context, query string) (string, error)
}

// Gatherer fans a query out to all configured sources concurrently, each with
// its own timeout, and assembles the resulting bundle. It never returns an
// error: the worst outcome is a bundle where every source is absent.
type Gatherer struct {
	clients    []SourceClient
	translator Translator
	timeout    time.Duration
	cache      *gocache.Cache
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// GathererOption customises a Gatherer.
type GathererOption func(*Gatherer)

// WithTranslator sets the query translator. Without one, queries are
// dispatched as-is.
func WithTranslator(tr Translator) GathererOption {
	return func(g *Gatherer) {
		g.translator = tr
	}
}

// WithSourceTimeout bounds each individual source call.
func WithSourceTimeout(d time.Duration) GathererOption {
	return func(g *Gatherer) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithCacheTTL enables bundle caching keyed by the translated query.
func WithCacheTTL(ttl time.Duration) GathererOption {
	return func(g *Gatherer) {
		if ttl > 0 {
			g.cache = gocache.New(ttl, 2*ttl)
		}
	}
}

// WithRateLimit caps outbound gather operations per second.
func WithRateLimit(perSecond float64, burst int) GathererOption {
	return func(g *Gatherer) {
		if perSecond > 0 && burst > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewGatherer wires the given source clients into a gatherer.
func NewGatherer(clients []SourceClient, opts ...GathererOption) *Gatherer {
	g := &Gatherer{
		clients: clients,
		timeout: 20 * time.Second,
		logger:  logging.WithComponent("evidence_gatherer"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Search gathers evidence for the query from every configured source.
func (g *Gatherer) Search(ctx context.Context, query string) *Bundle {
	dispatched := g.normalize(ctx, query)

	if g.cache != nil {
		if cached, ok := g.cache.Get(dispatched); ok {
			g.logger.Debug("bundle cache hit", "query", dispatched)
			return cached.(*Bundle)
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.logger.Warn("rate limiter wait aborted", "error", err)
			return NewBundle(dispatched)
		}
	}

	bundle := NewBundle(dispatched)
	eg, groupCtx := errgroup.WithContext(ctx)
	results := make([]struct {
		src  Source
		text string
		ok   bool
	}, len(g.clients))

	for i, client := range g.clients {
		eg.Go(func() error {
			callCtx, cancel := context.WithTimeout(groupCtx, g.timeout)
			defer cancel()

			text, err := client.Fetch(callCtx, dispatched)
			if err != nil {
				// Transport/auth failures degrade to absence, never
				// propagate to the caller.
				g.logger.Warn("evidence source failed",
					"source", string(client.Source()),
					"error", err,
				)
				return nil
			}
			results[i].src = client.Source()
			results[i].text = text
			results[i].ok = true
			return nil
		})
	}
	_ = eg.Wait()

	for _, res := range results {
		if res.ok {
			bundle.Set(res.src, res.text)
		}
	}

	g.logger.Info("evidence gathered",
		"query", dispatched,
		"present", bundle.SourcesPresent(),
	)

	if g.cache != nil && !bundle.Empty() {
		g.cache.SetDefault(dispatched, bundle)
	}
	return bundle
}

// normalize translates non-Latin queries to the common working language.
// Translation failure falls back to the raw query: a search in the original
// script still beats no search at all.
func (g *Gatherer) normalize(ctx context.Context, query string) string {
	if g.translator == nil || mostlyLatin(query) {
		return query
	}
	translated, err := g.translator.EnsureEnglish(ctx, query)
	if err != nil || translated == "" {
		g.logger.Warn("query translation failed", "error", err)
		return query
	}
	return translated
}

// mostlyLatin reports whether the query needs no translation before dispatch.
func mostlyLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII && unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
