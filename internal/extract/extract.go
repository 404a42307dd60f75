package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"resync/internal/util"
)

var (
	ErrInvalidPDF        = errors.New("invalid or unreadable PDF")
	ErrNoExtractableText = errors.New("no extractable text found in PDF")
	ErrFetchFailed       = errors.New("failed to fetch remote PDF")
)

// Extractor turns PDF bytes into plain text, and can fetch remote PDFs with a
// bounded-timeout client.
type Extractor struct {
	client   *http.Client
	maxBytes int64
}

func New(fetchTimeout time.Duration, maxBytes int64) *Extractor {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &Extractor{
		client:   &http.Client{Timeout: fetchTimeout},
		maxBytes: maxBytes,
	}
}

// Text extracts the concatenated text of all pages in document order.
func Text(data []byte) (text string, err error) {
	// The pdf parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract text: %v", ErrInvalidPDF, err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("%w: read extracted text: %v", ErrInvalidPDF, err)
	}
	text = util.SanitizeText(buf.String())
	if text == "" {
		return "", ErrNoExtractableText
	}
	return text, nil
}

// FetchText downloads a PDF from url and extracts its text.
func (e *Extractor) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("%w: document exceeds %d bytes", ErrFetchFailed, e.maxBytes)
	}
	return Text(data)
}
