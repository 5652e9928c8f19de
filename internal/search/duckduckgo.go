package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint. It needs no API key and is
// used as the fallback backend.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
}

func NewDuckDuckGo(timeout time.Duration) *DuckDuckGo {
	return &DuckDuckGo{
		baseURL: duckDuckGoURL,
		client:  newHTTPClient(timeout),
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	u := d.baseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", u, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: Failed to close response body for %s: %v", u, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, u)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", u, err)
	}

	return limit(collectResults(doc), opts.MaxResults), nil
}

// collectResults walks the result page. Each hit is an anchor with class
// result__a followed by a result__snippet element carrying the excerpt.
func collectResults(doc *html.Node) []Result {
	var results []Result

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				href := resolveRedirect(attr(n, "href"))
				if href != "" {
					results = append(results, Result{
						Title: strings.TrimSpace(extractText(n)),
						URL:   href,
					})
				}
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Content == "" {
					results[len(results)-1].Content = strings.TrimSpace(extractText(n))
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(doc)
	return results
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<target> redirect links.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}
