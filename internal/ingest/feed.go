package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/avoropai/argus/internal/model"
	"github.com/avoropai/argus/internal/util"
)

const (
	defaultUserAgent = "argus/1.0 (+https://github.com/avoropai/argus)"
	maxFeedBytes     = 2 << 20
)

// FeedFetcher pulls RSS/Atom feeds and turns entries into claims.
type FeedFetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	logger     *zap.Logger
}

// NewFeedFetcher builds a polite feed fetcher.
func NewFeedFetcher(timeout time.Duration, logger *zap.Logger) *FeedFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    util.NewRobotsChecker(defaultUserAgent, timeout),
		userAgent: defaultUserAgent,
		logger:    logger,
	}
}

// rssFeed covers RSS 2.0 documents.
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"author"`
}

// atomFeed covers Atom documents.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Content string `xml:"content"`
	Updated string `xml:"updated"`
	Author  struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
	} `xml:"link"`
}

// Fetch downloads one feed and converts its entries into claims attributed
// to the feed. Respects robots.txt; a disallowed feed returns no claims and
// no error.
func (f *FeedFetcher) Fetch(ctx context.Context, feedURL string) ([]model.Claim, error) {
	allowed, delay, err := f.robots.CanFetch(ctx, feedURL)
	if err == nil && !allowed {
		f.logger.Warn("feed disallowed by robots.txt", zap.String("url", feedURL))
		return nil, nil
	}
	if delay > 0 && delay < 30*time.Second {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	claims, err := ParseFeed(body, feedURL)
	if err != nil {
		return nil, err
	}

	f.logger.Info("feed ingested",
		zap.String("url", feedURL),
		zap.Int("claims", len(claims)))
	return claims, nil
}

// ParseFeed decodes an RSS or Atom document into claims. The attributor is
// the feed title when available, the URL otherwise.
func ParseFeed(data []byte, feedURL string) ([]model.Claim, error) {
	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return claimsFromRSS(rss, feedURL), nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		return claimsFromAtom(atom, feedURL), nil
	}

	return nil, fmt.Errorf("unrecognized feed format: %s", feedURL)
}

func claimsFromRSS(feed rssFeed, feedURL string) []model.Claim {
	attributor := strings.TrimSpace(feed.Channel.Title)
	if attributor == "" {
		attributor = feedURL
	}

	var claims []model.Claim
	for _, item := range feed.Channel.Items {
		text := buildClaimText(item.Title, item.Description)
		if text == "" {
			continue
		}
		claim := model.Claim{
			Text:         text,
			AttributedTo: attributor,
			SourceURL:    item.Link,
			Status:       model.ClaimPending,
		}
		if ts := parseFeedTime(item.PubDate); ts != nil {
			claim.ObservedAt = ts
		}
		claims = append(claims, claim)
	}
	return claims
}

func claimsFromAtom(feed atomFeed, feedURL string) []model.Claim {
	attributor := strings.TrimSpace(feed.Title)
	if attributor == "" {
		attributor = feedURL
	}

	var claims []model.Claim
	for _, entry := range feed.Entries {
		body := entry.Summary
		if body == "" {
			body = entry.Content
		}
		text := buildClaimText(entry.Title, body)
		if text == "" {
			continue
		}

		link := ""
		for _, l := range entry.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}

		claim := model.Claim{
			Text:         text,
			AttributedTo: attributor,
			SourceURL:    link,
			Status:       model.ClaimPending,
		}
		if entry.Author.Name != "" {
			claim.AttributedTo = entry.Author.Name
		}
		if ts := parseFeedTime(entry.Updated); ts != nil {
			claim.ObservedAt = ts
		}
		claims = append(claims, claim)
	}
	return claims
}

// buildClaimText joins title and body, strips embedded HTML and collapses
// whitespace. Feed descriptions routinely carry markup.
func buildClaimText(title, body string) string {
	text := strings.TrimSpace(title)
	body = StripHTML(body)
	if body != "" {
		if text != "" {
			text += ". "
		}
		text += body
	}
	if len(text) > 500 {
		text = text[:500]
	}
	return strings.TrimSpace(text)
}

// StripHTML extracts the visible text from an HTML fragment.
func StripHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.Contains(fragment, "<") {
		return collapseSpaces(fragment)
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(fragment)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseSpaces(buf.String())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseFeedTime tries the timestamp layouts feeds actually use.
func parseFeedTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"Mon, 2 Jan 2006 15:04:05 -0700",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
