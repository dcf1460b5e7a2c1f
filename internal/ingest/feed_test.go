package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const rssDoc = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Newswire</title>
    <item>
      <title>President signed an executive order on tariffs</title>
      <link>https://news.example/order</link>
      <description>&lt;p&gt;The order was signed &lt;b&gt;today&lt;/b&gt;.&lt;/p&gt;</description>
      <pubDate>Sat, 29 Aug 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title></title>
      <description></description>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Sanctions package announced</title>
    <summary>New measures take effect Monday.</summary>
    <updated>2026-08-29T10:00:00Z</updated>
    <author><name>Jane Reporter</name></author>
    <link rel="alternate" href="https://news.example/sanctions"/>
  </entry>
</feed>`

func TestParseFeed_RSS(t *testing.T) {
	claims, err := ParseFeed([]byte(rssDoc), "https://news.example/rss")
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim (empty item skipped), got %d", len(claims))
	}

	c := claims[0]
	if c.AttributedTo != "Example Newswire" {
		t.Errorf("Wrong attributor: %q", c.AttributedTo)
	}
	if !strings.Contains(c.Text, "executive order") {
		t.Errorf("Claim text lost the title: %q", c.Text)
	}
	if strings.Contains(c.Text, "<") {
		t.Errorf("HTML not stripped: %q", c.Text)
	}
	if c.SourceURL != "https://news.example/order" {
		t.Errorf("Wrong source URL: %q", c.SourceURL)
	}
	if c.ObservedAt == nil {
		t.Error("Expected parsed pubDate")
	}
}

func TestParseFeed_Atom(t *testing.T) {
	claims, err := ParseFeed([]byte(atomDoc), "https://news.example/atom")
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}

	c := claims[0]
	if c.AttributedTo != "Jane Reporter" {
		t.Errorf("Expected entry author as attributor, got %q", c.AttributedTo)
	}
	if c.SourceURL != "https://news.example/sanctions" {
		t.Errorf("Wrong source URL: %q", c.SourceURL)
	}
}

func TestParseFeed_Unrecognized(t *testing.T) {
	if _, err := ParseFeed([]byte("<html><body>not a feed</body></html>"), "https://x.example"); err == nil {
		t.Error("Expected error for non-feed document")
	}
}

func TestFeedFetcher_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssDoc))
	}))
	defer server.Close()

	f := NewFeedFetcher(5*time.Second, nil)
	claims, err := f.Fetch(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(claims) != 1 {
		t.Errorf("Expected 1 claim, got %d", len(claims))
	}
}

func TestFeedFetcher_RespectsRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /feed.xml\n"))
			return
		}
		t.Errorf("Disallowed path fetched: %s", r.URL.Path)
	}))
	defer server.Close()

	f := NewFeedFetcher(5*time.Second, nil)
	claims, err := f.Fetch(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if claims != nil {
		t.Errorf("Expected no claims for disallowed feed, got %d", len(claims))
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"<script>alert(1)</script>visible", "visible"},
		{"", ""},
		{"  spaced   out  ", "spaced out"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
