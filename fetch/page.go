// Package fetch retrieves readable page text for the profile persona.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxPageBytes = 32 * 1024 // keep fetched text prompt-sized

// Page downloads a URL and reduces it to plain text.
type Page struct {
	client *http.Client
}

// NewPage creates a page fetcher with a modest timeout.
func NewPage() *Page {
	return &Page{client: &http.Client{Timeout: 15 * time.Second}}
}

// NewPageWithClient creates a page fetcher using the supplied HTTP client.
func NewPageWithClient(client *http.Client) *Page {
	return &Page{client: client}
}

// Fetch downloads the URL, strips page chrome and markup, and truncates the
// remaining text.
func (p *Page) Fetch(ctx context.Context, url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", errors.New("fetch url is empty")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trimmed, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, nav, header, footer, iframe").Remove()

	text := collapseWhitespace(doc.Find("body").Text())
	if text == "" {
		// Some pages put everything outside body-level selectors.
		text = collapseWhitespace(doc.Text())
	}
	if len(text) > maxPageBytes {
		text = text[:maxPageBytes] + "\n[TRUNCATED]"
	}
	return text, nil
}

var spaceRegex = regexp.MustCompile(`[ \t]+`)

func collapseWhitespace(s string) string {
	s = spaceRegex.ReplaceAllString(s, " ")
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
