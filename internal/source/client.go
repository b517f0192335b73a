package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"transcriptsync/internal/transcript"
)

// ClientOptions configures the vendor API client.
type ClientOptions struct {
	BaseURL          string
	Username         string
	Password         string
	Categories       []string
	TranscriptTypes  []string
	SortOrder        []string
	PaginationLimit  int
	PaginationOffset int
	Timeout          time.Duration
}

// Client calls the vendor events-and-transcripts HTTP API.
type Client struct {
	opts   ClientOptions
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a vendor API client. The request timeout defaults to 30s.
func NewClient(opts ClientOptions, log zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// wireTranscript is the vendor's listing shape. Numeric identifiers are
// decoded as json.Number so they carry through in string form.
type wireTranscript struct {
	PrimaryIDs      []string    `json:"primaryIds"`
	EventID         json.Number `json:"eventId"`
	VersionID       json.Number `json:"versionId"`
	TranscriptType  string      `json:"transcriptType"`
	EventDate       string      `json:"eventDate"`
	TranscriptsLink string      `json:"transcriptsLink"`
}

type listResponse struct {
	Data []wireTranscript `json:"data"`
}

// FetchTranscripts queries the vendor listing endpoint for one ticker and
// decodes the response into transcript references, keeping only the
// configured transcript types.
func (c *Client) FetchTranscripts(ctx context.Context, ticker string, w Window) ([]transcript.Ref, error) {
	params := url.Values{
		"ids":              {ticker},
		"startDate":        {w.Start.Format("2006-01-02")},
		"endDate":          {w.End.Format("2006-01-02")},
		"paginationLimit":  {fmt.Sprintf("%d", c.opts.PaginationLimit)},
		"paginationOffset": {fmt.Sprintf("%d", c.opts.PaginationOffset)},
	}
	if len(c.opts.Categories) > 0 {
		params.Set("categories", strings.Join(c.opts.Categories, ","))
	}
	if len(c.opts.SortOrder) > 0 {
		params.Set("sort", strings.Join(c.opts.SortOrder, ","))
	}

	endpoint := strings.TrimRight(c.opts.BaseURL, "/") + "/transcripts/ids?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building transcript query: %w", err)
	}
	req.SetBasicAuth(c.opts.Username, c.opts.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying transcripts for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript query for %s: HTTP %d", ticker, resp.StatusCode)
	}

	var listing listResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decoding transcript listing for %s: %w", ticker, err)
	}

	refs := c.decodeListing(listing.Data, ticker)
	c.log.Debug().Str("ticker", ticker).
		Int("reported", len(listing.Data)).
		Int("kept", len(refs)).
		Msg("transcript listing fetched")
	return refs, nil
}

func (c *Client) decodeListing(items []wireTranscript, ticker string) []transcript.Ref {
	allowed := make(map[string]bool, len(c.opts.TranscriptTypes))
	for _, t := range c.opts.TranscriptTypes {
		allowed[t] = true
	}

	var refs []transcript.Ref
	for _, item := range items {
		if len(allowed) > 0 && !allowed[item.TranscriptType] {
			continue
		}
		eventDate, _ := time.Parse("2006-01-02", item.EventDate)
		refs = append(refs, transcript.Ref{
			Ticker:         ticker,
			TranscriptType: item.TranscriptType,
			EventID:        item.EventID.String(),
			VersionID:      item.VersionID.String(),
			EventDate:      eventDate,
			DownloadLink:   item.TranscriptsLink,
			PrimaryIDs:     item.PrimaryIDs,
		})
	}
	return refs
}

// Download fetches the raw transcript XML from the reference's opaque
// download link.
func (c *Client) Download(ctx context.Context, ref transcript.Ref) ([]byte, error) {
	if ref.DownloadLink == "" {
		return nil, fmt.Errorf("no download link for event %s version %s", ref.EventID, ref.VersionID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.DownloadLink, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	req.SetBasicAuth(c.opts.Username, c.opts.Password)
	req.Header.Set("Accept", "application/xml,*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading event %s: %w", ref.EventID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading event %s: HTTP %d", ref.EventID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading transcript body: %w", err)
	}
	return data, nil
}
