/*
Package pdftext extracts text from PDF filings. Digital PDFs are read in-process;
scanned or unreadable files fall back to the pdftotext utility.
*/
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/shanehull/labourscan/internal/types"
)

const (
	defaultTimeout = 60 * time.Second
	defaultMaxText = 1_500_000

	// Average characters per page below which a PDF is treated as image-only.
	scannedThreshold = 50
	diagnosisPages   = 3

	trailerScanBytes = 64 << 10
)

var encryptEntry = regexp.MustCompile(`/Encrypt\s*(<<|\d+\s+\d+\s+R)`)

type fallbackFunc func(ctx context.Context, path string) (string, error)

type Analyzer struct {
	timeout  time.Duration
	maxText  int
	fallback fallbackFunc
}

func NewAnalyzer(timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Analyzer{
		timeout:  timeout,
		maxText:  defaultMaxText,
		fallback: runPDFToText,
	}
}

// Analyze never fails: an unreadable document yields an Extraction with empty
// text and Source "Error".
func (a *Analyzer) Analyze(ctx context.Context, path string, category types.DocumentCategory) types.Extraction {
	name := filepath.Base(path)
	log.Printf("Processing %s (%s)...", name, category.Label())

	res, err := readPDF(path, a.maxText)
	if err != nil && !res.encrypted && declaresEncryption(path) {
		log.Printf("Warning: %s declares /Encrypt but could not be opened: %v", name, err)
		res.encrypted = true
	}
	if res.encrypted {
		return types.Extraction{Source: name, Encrypted: true, Pages: res.pages}
	}

	scanned := err == nil && res.scanned()
	if err != nil || scanned {
		if err != nil {
			log.Printf("Warning: in-process PDF read failed for %s: %v", name, err)
		} else {
			log.Printf("Diagnosis: scanned PDF %s (avg %d chars/page). Trying pdftotext.", name, res.avgLeadChars())
		}

		fctx, cancel := context.WithTimeout(ctx, a.timeout)
		text, ferr := a.fallback(fctx, path)
		cancel()

		if ferr != nil {
			log.Printf("Warning: pdftotext fallback failed for %s: %v", name, ferr)
		} else if len(text) > len(res.text) {
			res.text = truncate(text, a.maxText)
		}
	}

	if strings.TrimSpace(res.text) == "" {
		return types.Extraction{Source: "Error", Pages: res.pages, Scanned: scanned}
	}

	log.Printf("Extraction complete for %s: %d chars.", name, len(res.text))
	return types.Extraction{
		Text:    res.text,
		Source:  name,
		Pages:   res.pages,
		Scanned: scanned,
	}
}

type readResult struct {
	text      string
	pages     int
	encrypted bool
	leadChars []int
}

func (r readResult) avgLeadChars() int {
	if len(r.leadChars) == 0 {
		return 0
	}
	total := 0
	for _, n := range r.leadChars {
		total += n
	}
	return total / len(r.leadChars)
}

func (r readResult) scanned() bool {
	return r.avgLeadChars() < scannedThreshold
}

// readPDF recovers from panics raised by the parser on corrupt files.
func readPDF(path string, maxText int) (res readResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(path)
	if openErr != nil {
		if errors.Is(openErr, pdf.ErrInvalidPassword) || strings.Contains(strings.ToLower(openErr.Error()), "encrypt") {
			res.encrypted = true
			return res, nil
		}
		return res, fmt.Errorf("failed to open PDF: %w", openErr)
	}
	defer f.Close()

	if !r.Trailer().Key("Encrypt").IsNull() {
		res.encrypted = true
		return res, nil
	}

	res.pages = r.NumPage()
	var sb strings.Builder
	for i := 1; i <= res.pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			if i <= diagnosisPages {
				res.leadChars = append(res.leadChars, 0)
			}
			continue
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			pageText = ""
		}
		if i <= diagnosisPages {
			res.leadChars = append(res.leadChars, len(strings.TrimSpace(pageText)))
		}

		sb.WriteString(pageText)
		sb.WriteString("\n")
		if sb.Len() > maxText {
			break
		}
	}

	res.text = truncate(sb.String(), maxText)
	return res, nil
}

// declaresEncryption scans the end of the file, where the trailer or
// cross-reference stream lives, for an /Encrypt entry. It covers encryption
// schemes the in-process parser cannot open.
func declaresEncryption(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}
	offset := info.Size() - trailerScanBytes
	if offset < 0 {
		offset = 0
	}
	tail := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(tail, offset); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return encryptEntry.Match(tail)
}

func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}

func runPDFToText(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-raw", path, "-")

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("pdftotext timed out: %w", ctx.Err())
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("pdftotext binary not found. Please ensure poppler-utils is installed: %w", err)
		}
		return "", fmt.Errorf("pdftotext failed: %v. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := out.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("pdftotext extracted empty text string. File may be image-based or protected")
	}
	return text, nil
}
