// Package fetcher retrieves a web page over HTTP and decodes its body to
// text, falling back to ISO-8859-1 when the bytes are not valid UTF-8.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Page is the decoded result of one fetch. Encoding names the charset that
// produced Text.
type Page struct {
	URL      string
	Body     []byte
	Encoding string
	Text     string
}

// StatusError is returned when the page responds with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// Fetcher performs single page fetches with a fixed user agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Get performs one HTTP GET and decodes the body. Network failures and
// non-2xx statuses come back as errors; decoding cannot fail because the
// ISO-8859-1 fallback accepts every byte value.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	text, encoding := decode(body)
	return &Page{
		URL:      rawURL,
		Body:     body,
		Encoding: encoding,
		Text:     text,
	}, nil
}

// decode tries strict UTF-8 first. Many legacy recipe sites misreport or omit
// their charset, so anything invalid falls back to ISO-8859-1, which maps
// every byte to a rune.
func decode(body []byte) (string, string) {
	if utf8.Valid(body) {
		return string(body), "utf-8"
	}
	text, _ := charmap.ISO8859_1.NewDecoder().Bytes(body)
	return string(text), "iso-8859-1"
}
