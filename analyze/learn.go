package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/engine"
)

// defaultMaxExamples bounds the example URLs retained per page kind.
const defaultMaxExamples = 10

// Compile-time interface verification.
var _ engine.Learner = (*Learner)(nil)

// Learner accumulates classified page URLs during a run and folds them
// into the site's learned URL patterns when the run finishes. Templates
// use "*" for path segments that vary between examples; confidence is
// the share of examples the inferred template explains.
type Learner struct {
	Patterns scrapsae.PatternService
	Logger   *slog.Logger

	// MaxExamples bounds retained examples per kind; zero means
	// defaultMaxExamples.
	MaxExamples int

	mu       sync.Mutex
	observed map[string]*observations
}

type observations struct {
	products      []string
	categories    []string
	subcategories []string
}

// NewLearner creates a Learner over the pattern store.
func NewLearner(patterns scrapsae.PatternService, logger *slog.Logger) *Learner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Learner{
		Patterns: patterns,
		Logger:   logger,
		observed: make(map[string]*observations),
	}
}

// Observe records one classified page URL. Category pages reached below
// the traversal root are also recorded as subcategories.
func (l *Learner) Observe(siteID string, kind scrapsae.PageKind, pageURL string, depth int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	obs, ok := l.observed[siteID]
	if !ok {
		obs = &observations{}
		l.observed[siteID] = obs
	}
	switch kind {
	case scrapsae.PageProduct:
		obs.products = append(obs.products, pageURL)
	case scrapsae.PageCategory:
		obs.categories = append(obs.categories, pageURL)
		if depth > 0 {
			obs.subcategories = append(obs.subcategories, pageURL)
		}
	}
}

// Flush folds the site's observations into its persisted patterns and
// clears them. Flushing a site with no observations is a no-op.
func (l *Learner) Flush(ctx context.Context, siteID string) error {
	l.mu.Lock()
	obs := l.observed[siteID]
	delete(l.observed, siteID)
	l.mu.Unlock()

	if obs == nil || (len(obs.products) == 0 && len(obs.categories) == 0) {
		return nil
	}

	patterns, err := l.Patterns.FindPatternsBySite(ctx, siteID)
	if err != nil {
		if scrapsae.ErrorCode(err) != scrapsae.ENOTFOUND {
			return fmt.Errorf("load learned patterns: %w", err)
		}
		patterns = &scrapsae.LearnedPatterns{SiteID: siteID}
	}

	max := l.MaxExamples
	if max <= 0 {
		max = defaultMaxExamples
	}

	patterns.ProductExamples = mergeExamples(patterns.ProductExamples, obs.products, max)
	patterns.ListingExamples = mergeExamples(patterns.ListingExamples, obs.categories, max)
	patterns.SubcategoryExamples = mergeExamples(patterns.SubcategoryExamples, obs.subcategories, max)

	var ratios []float64
	var ratio float64
	if patterns.ProductTemplate, ratio = inferTemplate(patterns.ProductExamples); patterns.ProductTemplate != "" {
		ratios = append(ratios, ratio)
	}
	if patterns.ListingTemplate, ratio = inferTemplate(patterns.ListingExamples); patterns.ListingTemplate != "" {
		ratios = append(ratios, ratio)
	}
	if patterns.SubcategoryTemplate, ratio = inferTemplate(patterns.SubcategoryExamples); patterns.SubcategoryTemplate != "" {
		ratios = append(ratios, ratio)
	}
	patterns.Confidence = 0
	for _, r := range ratios {
		patterns.Confidence += r / float64(len(ratios))
	}
	patterns.NavigationHint = navigationHint(patterns)
	patterns.UpdatedAt = time.Now().UTC()

	if err := l.Patterns.SavePatterns(ctx, patterns); err != nil {
		return fmt.Errorf("save learned patterns: %w", err)
	}
	l.Logger.Debug("patterns updated",
		"site", siteID,
		"productTemplate", patterns.ProductTemplate,
		"listingTemplate", patterns.ListingTemplate,
		"confidence", patterns.Confidence,
	)
	return nil
}

// navigationHint renders the path that reaches product listings from the
// site root, preferring the deepest known category template.
func navigationHint(p *scrapsae.LearnedPatterns) string {
	template := p.SubcategoryTemplate
	if template == "" {
		template = p.ListingTemplate
	}
	u, err := url.Parse(template)
	if err != nil || u.Host == "" {
		return ""
	}
	trail := append([]string{"home"}, splitPath(u.Path)...)
	return strings.Join(trail, " > ")
}

// mergeExamples prepends new examples to prior ones, deduplicating and
// capping at max. Fresh examples win the cap.
func mergeExamples(prior, fresh []string, max int) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, u := range append(fresh, prior...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		merged = append(merged, u)
		if len(merged) == max {
			break
		}
	}
	return merged
}

// inferTemplate derives a URL template from example URLs: the dominant
// host and segment-count group wins, constant segments stay literal and
// varying segments become "*". The ratio is the share of examples the
// template explains.
func inferTemplate(examples []string) (string, float64) {
	if len(examples) == 0 {
		return "", 0
	}

	type shape struct {
		scheme string
		host   string
		n      int
	}
	groups := make(map[shape][][]string)
	for _, raw := range examples {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		segments := splitPath(u.Path)
		key := shape{scheme: u.Scheme, host: u.Host, n: len(segments)}
		groups[key] = append(groups[key], segments)
	}

	var best shape
	var bestGroup [][]string
	for key, group := range groups {
		if len(group) > len(bestGroup) {
			best, bestGroup = key, group
		}
	}
	if len(bestGroup) == 0 {
		return "", 0
	}

	template := make([]string, best.n)
	for i := 0; i < best.n; i++ {
		value := bestGroup[0][i]
		for _, segments := range bestGroup[1:] {
			if segments[i] != value {
				value = "*"
				break
			}
		}
		template[i] = value
	}

	t := best.scheme + "://" + best.host
	if best.n > 0 {
		t += "/" + strings.Join(template, "/")
	}
	return t, float64(len(bestGroup)) / float64(len(examples))
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
