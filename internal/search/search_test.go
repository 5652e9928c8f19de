package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgPage = `<html><body>
<div class="results">
  <div class="result">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fbajaj%2Fannual-report.pdf&rut=abc">Bajaj Auto <b>Annual Report</b></a>
    <a class="result__snippet" href="#">Bajaj Auto Limited annual report 2024-25</a>
  </div>
  <div class="result">
    <a class="result__a" href="https://in.finance.yahoo.com/quote/BAJAJ-AUTO.NS/">Bajaj Auto quote</a>
  </div>
  <div class="result">
    <a class="result__a" href="javascript:void(0)">broken</a>
  </div>
</div>
</body></html>`

func TestDuckDuckGoParsesResults(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	d := NewDuckDuckGo(5 * time.Second)
	d.baseURL = srv.URL + "/html/"

	results, err := d.Search(context.Background(), `"Bajaj Auto" filetype:pdf`, Options{MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, `"Bajaj Auto" filetype:pdf`, gotQuery)
	assert.Equal(t, "https://example.com/bajaj/annual-report.pdf", results[0].URL)
	assert.Equal(t, "Bajaj Auto Annual Report", results[0].Title)
	assert.Equal(t, "Bajaj Auto Limited annual report 2024-25", results[0].Content)
	assert.Equal(t, "https://in.finance.yahoo.com/quote/BAJAJ-AUTO.NS/", results[1].URL)
}

func TestDuckDuckGoNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDuckDuckGo(5 * time.Second)
	d.baseURL = srv.URL

	_, err := d.Search(context.Background(), "x", Options{})
	assert.Error(t, err)
}

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "advanced", req.SearchDepth)
		assert.Equal(t, 2, req.MaxResults)

		_, _ = w.Write([]byte(`{"results":[
			{"title":"a","url":"https://a.example/a.pdf","content":"first"},
			{"title":"b","url":"https://b.example/b.pdf","content":"second"},
			{"title":"c","url":"https://c.example/c.pdf","content":"third"}]}`))
	}))
	defer srv.Close()

	tv := NewTavily("key-123", 5*time.Second)
	tv.baseURL = srv.URL

	results, err := tv.Search(context.Background(), "q", Options{MaxResults: 2, Depth: DepthAdvanced})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://a.example/a.pdf", results[0].URL)
	assert.Equal(t, "second", results[1].Content)
}

func TestTavilyRequiresKey(t *testing.T) {
	_, err := NewTavily("", time.Second).Search(context.Background(), "q", Options{})
	assert.Error(t, err)
}

type stubSearcher struct {
	results []Result
	err     error
	calls   int
}

func (s *stubSearcher) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	s.calls++
	return s.results, s.err
}

func TestChainFallsThrough(t *testing.T) {
	failing := &stubSearcher{err: errors.New("boom")}
	empty := &stubSearcher{}
	good := &stubSearcher{results: []Result{{URL: "https://x.example/x.pdf"}}}

	results, err := Chain{failing, empty, good}.Search(context.Background(), "q", Options{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
}

func TestChainReportsErrorWhenAllFail(t *testing.T) {
	_, err := Chain{&stubSearcher{err: errors.New("boom")}}.Search(context.Background(), "q", Options{})
	assert.Error(t, err)

	_, err = Chain{}.Search(context.Background(), "q", Options{})
	assert.ErrorIs(t, err, ErrNoBackend)
}
