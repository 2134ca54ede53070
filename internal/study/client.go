/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package study talks to the study collection server. Participants upload
// their recorded interaction events in batches; nothing is downloaded back
// into the editor.
package study

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scenedraw/internal/eventlog"
)

// Client is a minimal HTTP client for the study API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a study client. baseURL may include a trailing slash; it
// will be normalized. A zero timeout falls back to 10 seconds.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// wireEvent is the upload projection of one recorded event.
type wireEvent struct {
	At    time.Time `json:"at"`
	Event string    `json:"event"`
	Tool  string    `json:"tool,omitempty"`
	Item  string    `json:"item_type,omitempty"`
	Notes string    `json:"notes,omitempty"`
}

type uploadRequest struct {
	Session string      `json:"session"`
	Events  []wireEvent `json:"events"`
}

// UploadResult reports what the server accepted.
type UploadResult struct {
	Accepted int `json:"accepted"`
}

// UploadEvents sends one session's events to the collection server.
func (c *Client) UploadEvents(ctx context.Context, session string, events []eventlog.Event) (*UploadResult, error) {
	wire := make([]wireEvent, 0, len(events))
	for _, e := range events {
		wire = append(wire, wireEvent{At: e.At, Event: e.Name, Tool: e.Tool, Item: e.Item, Notes: e.Notes})
	}
	var res UploadResult
	req := uploadRequest{Session: session, Events: wire}
	if err := c.doJSON(ctx, http.MethodPost, "/api/events", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ping checks connectivity and token validity.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil)
}
