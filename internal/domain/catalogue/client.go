package catalogue

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Client fetches the raw catalogue bundle. A single GET, no retries;
// callers decide whether and when to run again.
type Client struct {
	httpClient *http.Client
	accept     string
	appDesc    string
	bundlePath string
	dumpFile   string
}

type ClientOptions struct {
	Accept     string
	AppDesc    string
	BundlePath string
	DumpFile   string
	Timeout    time.Duration
}

func NewClient(opts ClientOptions) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		accept:     opts.Accept,
		appDesc:    opts.AppDesc,
		bundlePath: opts.BundlePath,
		dumpFile:   opts.DumpFile,
	}
}

// Fetch downloads the bundle document from baseURL. Any network failure
// or non-2xx status is reported as a TransportError. When a dump file is
// configured the verbatim body is written there; a dump failure is logged
// and does not fail the fetch.
func (c *Client) Fetch(ctx context.Context, baseURL string) ([]byte, error) {
	url := baseURL + c.bundlePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", c.accept)
	req.Header.Set("x-app-desc", c.appDesc)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if c.dumpFile != "" {
		if err := os.WriteFile(c.dumpFile, body, 0o644); err != nil {
			log.Error().Err(err).Str("file", c.dumpFile).Msg("bundle dump failed")
		}
	}
	return body, nil
}
