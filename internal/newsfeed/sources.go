package newsfeed

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pulseworks/marketpulse/pkg/models"
)

// DefaultSources lists the financial news feeds polled when no sources are
// configured.
var DefaultSources = []Source{
	{Name: "MarketWatch", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex"},
	{Name: "CNBC", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=10001147"},
	{Name: "Financial Times", URL: "https://www.ft.com/markets?format=rss"},
}

// Parser turns a source's raw payload into article records. The pipeline
// never interprets markup itself; it consumes whatever a parser yields.
type Parser interface {
	Parse(raw []byte, src Source) ([]models.Article, error)
}

// RSSParser parses RSS/Atom payloads into articles.
type RSSParser struct {
	parser *gofeed.Parser
	now    func() time.Time
}

// NewRSSParser creates a feed parser.
func NewRSSParser() *RSSParser {
	return &RSSParser{parser: gofeed.NewParser(), now: time.Now}
}

// NewRSSParserWithClock creates a feed parser with an injected clock, used
// by tests to pin the published-time fallback.
func NewRSSParserWithClock(now func() time.Time) *RSSParser {
	return &RSSParser{parser: gofeed.NewParser(), now: now}
}

// Parse converts a feed payload into articles. Items without a parseable
// publication time default to the current time; the "today" filter then
// keeps them, which is the documented fallback for undated items.
func (p *RSSParser) Parse(raw []byte, src Source) ([]models.Article, error) {
	feed, err := p.parser.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		a := models.Article{
			Title:       title,
			Summary:     StripHTML(item.Description),
			URL:         item.Link,
			Source:      src.Name,
			PublishedAt: p.now(),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// StripHTML removes markup from a string, returning its text content.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
