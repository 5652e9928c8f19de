/*
Package market fetches headline financials for a listed company from Yahoo
Finance and formats them in crore.
*/
package market

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shanehull/labourscan/internal/types"
)

const (
	yahooBaseURL   = "https://finance.yahoo.com"
	defaultTimeout = 15 * time.Second

	crore = 1e7
	// Yahoo reports statement figures in thousands.
	yahooUnit = 1000

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var printer = message.NewPrinter(language.English)

// Row titles tried in order for each metric.
var (
	revenueRows  = []string{"Total Revenue", "Operating Revenue"}
	ebitdaRows   = []string{"Normalized EBITDA", "EBITDA"}
	netIncRows   = []string{"Net Income Common Stockholders", "Net Income"}
	employeeRows = []string{"Salaries And Wages", "Employee Benefits"}
)

type TickerResolver interface {
	ResolveTicker(ctx context.Context, companyName string) (string, bool)
}

type Feed interface {
	Fetch(ctx context.Context, companyName string, ticker string) (*types.MarketData, bool)
}

type YahooFeed struct {
	resolver TickerResolver
	client   *http.Client
	baseURL  string
}

func NewYahooFeed(resolver TickerResolver, timeout time.Duration) *YahooFeed {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &YahooFeed{
		resolver: resolver,
		client:   &http.Client{Timeout: timeout},
		baseURL:  yahooBaseURL,
	}
}

// Fetch returns false when the ticker cannot be resolved or the statement page
// has no usable figures. The resolver is only consulted when ticker is empty.
func (y *YahooFeed) Fetch(ctx context.Context, companyName string, ticker string) (*types.MarketData, bool) {
	log.Printf("Financial API: hunting truth data for %s...", companyName)

	if ticker == "" {
		resolved, ok := y.resolver.ResolveTicker(ctx, companyName)
		if !ok {
			log.Printf("Warning: could not resolve ticker symbol for %s.", companyName)
			return nil, false
		}
		ticker = resolved
	}

	rows, err := y.incomeStatement(ctx, ticker)
	if err != nil {
		log.Printf("Warning: financial API error for %s: %v", ticker, err)
		return nil, false
	}
	if len(rows) == 0 {
		log.Printf("Warning: no financial data found for %s", ticker)
		return nil, false
	}

	data := &types.MarketData{
		Ticker:       ticker,
		Revenue:      formatRow(rows, revenueRows),
		EBITDA:       formatRow(rows, ebitdaRows),
		NetIncome:    formatRow(rows, netIncRows),
		EmployeeCost: formatRow(rows, employeeRows),
	}
	log.Printf("Financial truth acquired for %s", ticker)
	return data, true
}

func (y *YahooFeed) incomeStatement(ctx context.Context, ticker string) (map[string]float64, error) {
	pageURL := fmt.Sprintf("%s/quote/%s/financials/", y.baseURL, url.PathEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", pageURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: Failed to close response body for %s: %v", pageURL, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}
	return parseStatement(doc), nil
}

// parseStatement maps each row title to its most recent numeric column.
func parseStatement(doc *goquery.Document) map[string]float64 {
	rows := make(map[string]float64)

	doc.Find("div.tableBody div.row").Each(func(_ int, row *goquery.Selection) {
		title := strings.TrimSpace(row.Find(".rowTitle").First().Text())
		if title == "" {
			return
		}

		row.Find("div.column").EachWithBreak(func(_ int, col *goquery.Selection) bool {
			if col.HasClass("sticky") {
				return true
			}
			if v, ok := parseNumber(col.Text()); ok {
				rows[title] = v * yahooUnit
				return false
			}
			return true
		})
	})
	return rows
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" || s == "--" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatRow(rows map[string]float64, titles []string) string {
	for _, t := range titles {
		if v, ok := rows[t]; ok && v != 0 {
			return FormatCrore(v)
		}
	}
	return types.NotAvailable
}

// FormatCrore renders an amount in rupees as crore with thousands grouping,
// e.g. ₹1,234.50 Cr.
func FormatCrore(rupees float64) string {
	return printer.Sprintf("₹%.2f Cr", rupees/crore)
}
