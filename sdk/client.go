// ABOUTME: Client for a remote Web Clipper server
// ABOUTME: Sends runtime messages, drives tab lifecycle and streams pushes to a remote content script

package sdk

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"webclipper-api/api/dto/mappers"
	"webclipper-api/api/dto/requests"
	"webclipper-api/api/dto/responses"
	"webclipper-api/core/client"
	"webclipper-api/core/domain"
	"webclipper-api/core/host"
	"webclipper-api/core/interfaces"
)

// Tab is a registered tab as reported by the server
type Tab = responses.TabResponse

// maxEventBytes bounds one event line; inline images make them large
const maxEventBytes = 32 << 20

// Client is the main entry point for the SDK
type Client struct {
	config Config
}

// NewClient creates a new client with the given options
func NewClient(options ...Option) (*Client, error) {
	config := defaultConfig()
	for _, opt := range options {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if config.Logger == nil {
		config.Logger = interfaces.NopLogger{}
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{config: config}, nil
}

// Send delivers a runtime message on behalf of tabID, which may be empty
func (c *Client) Send(ctx context.Context, tabID string, msg domain.Message) (domain.Response, error) {
	var out responses.MessageResponse
	header := http.Header{}
	if tabID != "" {
		header.Set("X-Tab-ID", tabID)
	}
	if err := c.do(ctx, http.MethodPost, "/messages", header, mappers.ToMessageRequest(msg), &out); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{Items: out.Items, Visible: out.Visible}, nil
}

// Tab returns a Store Client transport that speaks for tabID
func (c *Client) Tab(tabID string) client.Transport {
	return client.TransportFunc(func(ctx context.Context, msg domain.Message) (domain.Response, error) {
		return c.Send(ctx, tabID, msg)
	})
}

// UpsertTab registers a tab or updates its address. Status is loading or complete.
func (c *Client) UpsertTab(ctx context.Context, tabID, pageURL, status string) (Tab, error) {
	var out Tab
	err := c.do(ctx, http.MethodPut, tabPath(tabID, ""), nil, requests.UpsertTabRequest{URL: pageURL, Status: status}, &out)
	return out, err
}

// GetTab returns a tab with its badge
func (c *Client) GetTab(ctx context.Context, tabID string) (Tab, error) {
	var out Tab
	err := c.do(ctx, http.MethodGet, tabPath(tabID, ""), nil, nil, &out)
	return out, err
}

// RemoveTab forgets a closed tab
func (c *Client) RemoveTab(ctx context.Context, tabID string) error {
	return c.do(ctx, http.MethodDelete, tabPath(tabID, ""), nil, nil, nil)
}

// ActivateTab marks a tab active
func (c *Client) ActivateTab(ctx context.Context, tabID string) (Tab, error) {
	var out Tab
	err := c.do(ctx, http.MethodPost, tabPath(tabID, "/activate"), nil, nil, &out)
	return out, err
}

// Toggle clicks the toolbar button for tabID and returns the new visibility
func (c *Client) Toggle(ctx context.Context, tabID string) (bool, error) {
	var out responses.ToggleResponse
	if err := c.do(ctx, http.MethodPost, tabPath(tabID, "/toggle"), nil, nil, &out); err != nil {
		return false, err
	}
	return out.Visible, nil
}

// Menu clicks a context-menu entry in tabID. Opening a frame returns the new tab.
func (c *Client) Menu(ctx context.Context, tabID string, click host.MenuClick) (*Tab, error) {
	var out responses.MenuClickResponse
	body := requests.MenuClickRequest{
		MenuItemID:    click.MenuItemID,
		SelectionText: click.SelectionText,
		FrameURL:      click.FrameURL,
	}
	if err := c.do(ctx, http.MethodPost, tabPath(tabID, "/menu"), nil, body, &out); err != nil {
		return nil, err
	}
	return out.Opened, nil
}

// Events streams pushes to tabID until ctx ends, the stream closes or fn fails.
// The returned error is nil when ctx ended the stream.
func (c *Client) Events(ctx context.Context, tabID string, fn func(domain.Message) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, tabPath(tabID, "/events"), nil, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// streams outlive the per-request timeout
	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return NewError(ErrorTypeNetwork, "event stream failed").WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readProblem(resp)
	}

	c.config.Logger.Debug("Event stream opened", map[string]interface{}{"tab": tabID})
	err = readEvents(resp.Body, func(event string, data []byte) error {
		switch event {
		case "message":
			var msg domain.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				return NewError(ErrorTypeParsing, "unreadable event").WithCause(err)
			}
			return fn(msg)
		case "error":
			var p struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(data, &p)
			return NewError(ErrorTypeNotFound, p.Message).WithContext("tab", tabID)
		default:
			return nil
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Listen makes receiver the content script of tabID for as long as ctx lives
func (c *Client) Listen(ctx context.Context, tabID string, receiver interfaces.Receiver) error {
	return c.Events(ctx, tabID, func(msg domain.Message) error {
		if _, err := receiver.Deliver(ctx, msg); err != nil {
			c.config.Logger.Warn("Receiver failed to handle push", map[string]interface{}{
				"tab":    tabID,
				"action": string(msg.Action),
				"error":  err.Error(),
			})
		}
		return nil
	})
}

// readEvents parses a text/event-stream body and calls fn once per event.
// An event cut off by a clean end of stream is still delivered.
func readEvents(r io.Reader, fn func(event string, data []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventBytes)

	event := "message"
	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				if err := fn(event, data.Bytes()); err != nil {
					return err
				}
			}
			event = "message"
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return NewError(ErrorTypeNetwork, "event stream interrupted").WithCause(err)
	}
	// event left open at end of stream
	if data.Len() > 0 {
		return fn(event, data.Bytes())
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out interface{}) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, path, header, body)
	if err != nil {
		return err
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return NewError(ErrorTypeNetwork, fmt.Sprintf("%s %s failed", method, path)).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := readProblem(resp)
		c.config.Logger.Debug("Request rejected", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"error":  err.Error(),
		})
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewError(ErrorTypeParsing, "unreadable response").WithCause(err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, header http.Header, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, NewError(ErrorTypeInternal, "cannot encode request").WithCause(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, NewError(ErrorTypeConfiguration, "cannot build request").WithCause(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func readProblem(resp *http.Response) error {
	var p problem
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(data, &p)
	return errorForStatus(resp.StatusCode, p)
}

func tabPath(tabID, suffix string) string {
	return "/tabs/" + url.PathEscape(tabID) + suffix
}
