// Package api is the HTTP side channel to the chat backend: contact list,
// contact verification, conversation history and attachment uploads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"chatka/models"
)

// response is the backend's common reply envelope.
type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Total   int             `json:"total,omitempty"`
}

// UploadResult is the outcome of an attachment upload. OK is true only for
// a structurally valid success reply carrying a non-empty URL; every
// failure mode collapses to OK=false so the caller can fall back to a
// placeholder instead of dropping the message.
type UploadResult struct {
	URL string
	OK  bool
}

// Client talks to the chat backend's HTTP endpoints.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
// The http.Client should carry a bounded timeout.
func New(base string, httpClient *http.Client, log *zap.Logger) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: httpClient,
		log:  log,
	}
}

// Contacts fetches the contact list for username. A status:false reply or
// a reply without data degrades to an empty list rather than an error.
func (c *Client) Contacts(ctx context.Context, username string) ([]models.Contact, error) {
	u := fmt.Sprintf("%s/contact-list?username=%s", c.base, url.QueryEscape(username))

	res, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if !res.Status || res.Data == nil {
		c.log.Warn("contact list unavailable", zap.String("reason", res.Message))
		return []models.Contact{}, nil
	}

	var contacts []models.Contact
	if err := json.Unmarshal(res.Data, &contacts); err != nil {
		c.log.Warn("malformed contact list payload", zap.Error(err))
		return []models.Contact{}, nil
	}
	return contacts, nil
}

// VerifyContact asks the backend whether username exists. A status:false
// reply means "no such user" and is not an error.
func (c *Client) VerifyContact(ctx context.Context, username string) (bool, error) {
	body, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/verify-contact", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.do(req)
	if err != nil {
		return false, err
	}
	return res.Status, nil
}

// History fetches the messages between u1 and u2, in the order the server
// returns them (most recent first). Failure or a malformed payload
// degrades to an empty slice so a stale feed never survives a fetch.
func (c *Client) History(ctx context.Context, u1, u2 string) ([]models.Message, error) {
	u := fmt.Sprintf("%s/chat-history?u1=%s&u2=%s", c.base, url.QueryEscape(u1), url.QueryEscape(u2))

	res, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if !res.Status || res.Data == nil {
		c.log.Warn("chat history unavailable", zap.String("reason", res.Message))
		return []models.Message{}, nil
	}

	var msgs []models.Message
	if err := json.Unmarshal(res.Data, &msgs); err != nil {
		c.log.Warn("malformed chat history payload", zap.Error(err))
		return []models.Message{}, nil
	}
	return msgs, nil
}

// uploadData is the payload of a successful attachment upload.
type uploadData struct {
	URL string `json:"url"`
}

// Upload pushes an attachment as a multipart request and reports the
// durable URL the server assigned. It never returns an error: any failure
// (network, malformed reply, status:false, missing URL) yields OK=false
// and the composer substitutes its placeholder line.
func (c *Client) Upload(ctx context.Context, fileName string, r io.Reader) UploadResult {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		c.log.Warn("attachment upload failed", zap.String("file", fileName), zap.Error(err))
		return UploadResult{}
	}
	if _, err := io.Copy(part, r); err != nil {
		c.log.Warn("attachment upload failed", zap.String("file", fileName), zap.Error(err))
		return UploadResult{}
	}
	if err := mw.Close(); err != nil {
		c.log.Warn("attachment upload failed", zap.String("file", fileName), zap.Error(err))
		return UploadResult{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat/attachment", &buf)
	if err != nil {
		c.log.Warn("attachment upload failed", zap.String("file", fileName), zap.Error(err))
		return UploadResult{}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.do(req)
	if err != nil {
		c.log.Warn("attachment upload failed", zap.String("file", fileName), zap.Error(err))
		return UploadResult{}
	}
	if !res.Status || res.Data == nil {
		c.log.Warn("attachment upload rejected", zap.String("file", fileName), zap.String("reason", res.Message))
		return UploadResult{}
	}

	var data uploadData
	if err := json.Unmarshal(res.Data, &data); err != nil || data.URL == "" {
		c.log.Warn("attachment upload reply missing url", zap.String("file", fileName))
		return UploadResult{}
	}
	return UploadResult{URL: data.URL, OK: true}
}

func (c *Client) getJSON(ctx context.Context, u string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("request %s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}

	res := &response{}
	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return nil, fmt.Errorf("request %s: decode reply: %w", req.URL.Path, err)
	}
	return res, nil
}
