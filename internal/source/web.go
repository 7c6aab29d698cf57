package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	// DefaultFetchTimeout bounds one page request.
	DefaultFetchTimeout = 30 * time.Second

	// requestsPerSecond keeps scraping polite: at most one page every
	// three seconds, as the upstream's usage ethics expect.
	requestsPerSecond = 1.0 / 3.0

	// gatewayErrorRetries bounds the wait-and-refetch loop on upstream
	// gateway errors before the fetch is reported as a timeout.
	gatewayErrorRetries = 3
	gatewayErrorPause   = 5 * time.Second
)

// Selectors locates article fields on the source's pages. The defaults
// match the currently scraped site; they are configuration, not
// contract.
type Selectors struct {
	Authors       string
	Title         string
	Year          string
	Magazine      string
	Issue         string
	Volume        string
	Keywords      string
	Abstract      string
	StatusBadge   string // fmt pattern keyed by flag name (scopus, vak)
	Reference     string
	Body          string
	ArticleLink   string
	PageCounter   string
	ChallengeNode string // anti-bot challenge marker
}

// DefaultSelectors returns the selector set for the default upstream.
func DefaultSelectors() Selectors {
	return Selectors{
		Authors:       "ul.author-list li[itemprop=author]",
		Title:         "h1 i[itemprop=headline]",
		Year:          "time[itemprop=datePublished]",
		Magazine:      "a[itemprop=publisher] span",
		Issue:         "span[itemprop=issueNumber]",
		Volume:        "span[itemprop=volumeNumber]",
		Keywords:      "ul.keyword-list li span[itemprop=keywords]",
		Abstract:      "div[itemprop=description] p",
		StatusBadge:   "div.article-badges span.%s",
		Reference:     "div.citation p",
		Body:          "div[itemprop=articleBody]",
		ArticleLink:   "a[href^='/article/n/']",
		PageCounter:   "ul.pagination li:last-child a",
		ChallengeNode: "#g-recaptcha-response",
	}
}

// WebSource scrapes the upstream article site.
type WebSource struct {
	baseURL   string
	selectors Selectors
	client    *http.Client
	limiter   *rate.Limiter
}

// WebOption configures a WebSource.
type WebOption func(*WebSource)

// WithClient sets a custom HTTP client.
func WithClient(hc *http.Client) WebOption {
	return func(w *WebSource) {
		w.client = hc
	}
}

// WithSelectors overrides the page selectors.
func WithSelectors(s Selectors) WebOption {
	return func(w *WebSource) {
		w.selectors = s
	}
}

// WithRateLimit overrides the polite-scraping pace (requests/second).
func WithRateLimit(rps float64) WebOption {
	return func(w *WebSource) {
		w.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewWebSource creates a scraper rooted at baseURL.
func NewWebSource(baseURL string, opts ...WebOption) *WebSource {
	w := &WebSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		selectors: DefaultSelectors(),
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ ArticleSource = (*WebSource)(nil)

// fetchDocument loads and parses one page, translating transport and
// page-level conditions into the Outcome sentinels. Upstream gateway
// errors get a bounded wait-and-refetch.
func (w *WebSource) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	for attempt := 0; ; attempt++ {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := w.client.Do(req)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, ErrFetchTimeout
			}
			return nil, fmt.Errorf("fetching page: %w", err)
		}

		doc, parseErr := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if parseErr != nil {
			return nil, fmt.Errorf("parsing page: %w", parseErr)
		}

		if isGatewayError(doc) || resp.StatusCode == http.StatusBadGateway {
			if attempt >= gatewayErrorRetries {
				return nil, ErrFetchTimeout
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(gatewayErrorPause):
			}
			continue
		}

		if doc.Find(w.selectors.ChallengeNode).Length() > 0 {
			return nil, ErrBlocked
		}
		if strings.TrimSpace(doc.Find("body").Text()) == "" {
			return nil, ErrEmptyPage
		}

		return doc, nil
	}
}

func isGatewayError(doc *goquery.Document) bool {
	return strings.TrimSpace(doc.Find("h1").First().Text()) == "502 Bad Gateway"
}

// Fetch implements ArticleSource.
func (w *WebSource) Fetch(ctx context.Context, slug string) (*Fields, error) {
	doc, err := w.fetchDocument(ctx, w.baseURL+"/article/n/"+slug)
	if err != nil {
		return nil, err
	}

	sel := w.selectors
	fields := &Fields{
		Title:          text(doc, sel.Title),
		Year:           text(doc, sel.Year),
		Magazine:       text(doc, sel.Magazine),
		MagazineIssue:  text(doc, sel.Issue),
		MagazineVolume: text(doc, sel.Volume),
		Abstract:       text(doc, sel.Abstract),
		Reference:      text(doc, sel.Reference),
		Scopus:         badge(doc, sel.StatusBadge, "scopus"),
		VAK:            badge(doc, sel.StatusBadge, "vak"),
	}

	doc.Find(sel.Authors).Each(func(_ int, s *goquery.Selection) {
		if v := strings.TrimSpace(s.Text()); v != "" {
			fields.Authors = append(fields.Authors, v)
		}
	})
	doc.Find(sel.Keywords).Each(func(_ int, s *goquery.Selection) {
		if v := strings.TrimSpace(s.Text()); v != "" {
			fields.Keywords = append(fields.Keywords, v)
		}
	})

	var paragraphs []string
	doc.Find(sel.Body).Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(s.Text()))
	})
	fields.Text = strings.Join(paragraphs, "\n")

	// A loaded page without title or body lacks the expected article
	// markup.
	if fields.Title == "" || fields.Text == "" {
		return nil, ErrMissingContent
	}

	return fields, nil
}

// Category implements ArticleSource.
func (w *WebSource) Category(name string) Category {
	return &webCategory{source: w, name: name}
}

type webCategory struct {
	source *WebSource
	name   string
}

// Pages returns the category's page count from its pagination control.
func (c *webCategory) Pages(ctx context.Context) (int, error) {
	doc, err := c.source.fetchDocument(ctx, c.source.baseURL+"/article/c/"+c.name)
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(doc.Find(c.source.selectors.PageCounter).Text())
	pages, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: page counter %q", ErrMissingContent, raw)
	}
	return pages, nil
}

// Slugs returns the article slugs listed on one category page.
func (c *webCategory) Slugs(ctx context.Context, page int) ([]string, error) {
	url := fmt.Sprintf("%s/article/c/%s/%d", c.source.baseURL, c.name, page)
	doc, err := c.source.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	var slugs []string
	seen := map[string]struct{}{}
	doc.Find(c.source.selectors.ArticleLink).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		slug := strings.Trim(strings.TrimPrefix(href, "/article/n/"), "/")
		if slug == "" {
			return
		}
		if _, dup := seen[slug]; dup {
			return
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	})
	return slugs, nil
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func badge(doc *goquery.Document, pattern, flag string) string {
	if doc.Find(fmt.Sprintf(pattern, flag)).Length() > 0 {
		return "1"
	}
	return "0"
}
