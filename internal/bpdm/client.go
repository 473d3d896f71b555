// Package bpdm is the REST client for the business-partner API: token
// handling, chunked upload of input records, paged download and
// sharing-state queries. It deliberately never retries; a failed call is
// reported to the job and the operator decides.
package bpdm

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bpdmkit/partnerfile/internal/config"
)

// DefaultChunkSize is how many records go into one API call.
const DefaultChunkSize = 100

// downloadLimit stops a runaway paged download; the API should never hold
// this many records for one company.
const downloadLimit = 1_000_000

// Progress receives human-readable progress lines for the running job.
type Progress func(format string, args ...any)

// Client talks to one configured partner API tenant.
type Client struct {
	http    *http.Client
	baseURL string
	authURL string
	creds   config.Credentials
	chunk   int
	log     *zap.Logger
}

// New builds a client from the server configuration.
func New(cfg config.Config, creds config.Credentials, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second, Transport: transport},
		baseURL: cfg.BaseURL,
		authURL: cfg.AuthURL,
		creds:   creds,
		chunk:   chunk,
		log:     log,
	}
}

// token fetches an access token via the client-credentials grant.
func (c *Client) token(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.creds.ClientID + ":" + c.creds.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("bpdm: token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bpdm: token request: status %d", resp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("bpdm: token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("bpdm: token response has no access_token")
	}
	return body.AccessToken, nil
}

// UpsertInput uploads record payloads to the input stage in chunks,
// reporting progress after each chunk.
func (c *Client) UpsertInput(ctx context.Context, payloads []map[string]any, progress Progress) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	total := 0
	for len(payloads) > 0 {
		n := min(c.chunk, len(payloads))
		chunk := payloads[:n]
		payloads = payloads[n:]

		body, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("bpdm: marshal chunk: %w", err)
		}
		status, _, err := c.do(ctx, http.MethodPut, c.baseURL+"input/business-partners", token, body)
		c.log.Info("upsert chunk",
			zap.Int("from", total), zap.Int("to", total+n-1), zap.Int("status", status))
		if err != nil {
			return err
		}
		total += n
		progress("Uploaded %d records", total)
	}
	return nil
}

// DownloadAll fetches every record of the given stage ("input" or "output"),
// page by page, until the API returns an empty page.
func (c *Client) DownloadAll(ctx context.Context, stage string, progress Progress) ([]map[string]any, error) {
	if stage != "input" && stage != "output" {
		return nil, fmt.Errorf("bpdm: unknown stage %q", stage)
	}
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	var result []map[string]any
	for page := 0; ; page++ {
		params := url.Values{
			"page": {strconv.Itoa(page)},
			"size": {strconv.Itoa(c.chunk)},
		}
		u := c.baseURL + stage + "/business-partners/search?" + params.Encode()
		status, data, err := c.do(ctx, http.MethodPost, u, token, []byte("[]"))
		if err != nil {
			return nil, err
		}
		var body struct {
			Content []map[string]any `json:"content"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("bpdm: search response: %w", err)
		}
		c.log.Info("search page", zap.String("stage", stage),
			zap.Int("page", page), zap.Int("count", len(body.Content)), zap.Int("status", status))
		if len(body.Content) == 0 {
			return result, nil
		}
		result = append(result, body.Content...)
		progress("Downloaded %d records", len(result))
		if len(result) > downloadLimit {
			return result, fmt.Errorf("bpdm: download exceeded %d records, aborting", downloadLimit)
		}
	}
}

// SharingState is one row of a sharing-state query result.
type SharingState struct {
	ExternalID            string `json:"externalId"`
	BusinessPartnerType   string `json:"businessPartnerType"`
	SharingStateType      string `json:"sharingStateType"`
	SharingErrorCode      string `json:"sharingErrorCode"`
	SharingErrorMessage   string `json:"sharingErrorMessage"`
	Bpn                   string `json:"bpn"`
	SharingProcessStarted string `json:"sharingProcessStarted"`
	TaskID                string `json:"taskId"`
}

// Row renders the state in sharing-state CSV column order.
func (s SharingState) Row() []string {
	return []string{
		s.ExternalID, s.BusinessPartnerType, s.SharingStateType,
		s.SharingErrorCode, s.SharingErrorMessage, s.Bpn,
		s.SharingProcessStarted, s.TaskID,
	}
}

// SharingStates queries the sharing state for the given external IDs in
// chunks.
func (c *Client) SharingStates(ctx context.Context, externalIDs []string, progress Progress) ([]SharingState, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	var result []SharingState
	for len(externalIDs) > 0 {
		n := min(c.chunk, len(externalIDs))
		chunk := externalIDs[:n]
		externalIDs = externalIDs[n:]

		params := url.Values{
			"page":                {"0"},
			"size":                {strconv.Itoa(c.chunk)},
			"businessPartnerType": {"GENERIC"},
		}
		for _, id := range chunk {
			params.Add("externalIds", id)
		}
		u := c.baseURL + "sharing-state?" + params.Encode()
		status, data, err := c.do(ctx, http.MethodGet, u, token, nil)
		if err != nil {
			return nil, err
		}
		var body struct {
			Content []SharingState `json:"content"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("bpdm: sharing-state response: %w", err)
		}
		c.log.Info("sharing-state chunk", zap.Int("requested", n),
			zap.Int("received", len(body.Content)), zap.Int("status", status))
		result = append(result, body.Content...)
		progress("Downloaded %d records", len(result))
	}
	return result, nil
}

// do performs one authenticated JSON call and returns status and body.
// Non-2xx statuses are errors; the body is still returned for diagnostics.
func (c *Client) do(ctx context.Context, method, u, token string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("bpdm: %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("bpdm: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, data, fmt.Errorf("bpdm: %s %s: status %d", method, u, resp.StatusCode)
	}
	return resp.StatusCode, data, nil
}
