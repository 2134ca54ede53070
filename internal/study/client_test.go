/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package study

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scenedraw/internal/eventlog"
)

func TestUploadEventsSendsBatchWithToken(t *testing.T) {
	var gotAuth string
	var gotReq uploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/events" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(UploadResult{Accepted: len(gotReq.Events)})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", time.Second)
	events := []eventlog.Event{
		{At: time.Now(), Name: "item_created", Tool: "rect", Item: "Rect"},
		{At: time.Now(), Name: "suggestion_accept", Notes: "cat_ears"},
	}
	res, err := c.UploadEvents(context.Background(), "s1", events)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Accepted != 2 {
		t.Fatalf("accepted = %d, want 2", res.Accepted)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotReq.Session != "s1" || len(gotReq.Events) != 2 || gotReq.Events[0].Event != "item_created" {
		t.Fatalf("unexpected payload: %+v", gotReq)
	}
}

func TestUploadEventsSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if _, err := c.UploadEvents(context.Background(), "s1", nil); err == nil {
		t.Fatal("expected error from 403 response")
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, "", time.Second).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
