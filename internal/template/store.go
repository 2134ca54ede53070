/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package template persists named item groups as JSON files keyed by
// (category, id). A malformed template file is skipped on load, never fatal.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scenedraw/internal/log"
	"scenedraw/internal/scene"
)

// Meta identifies a template.
type Meta struct {
	Category string `json:"category"`
	ItemID   string `json:"item_id"`
}

// file is the on-disk envelope.
type file struct {
	Meta  Meta           `json:"meta"`
	Items []scene.Record `json:"items"`
}

// Template is one loaded, decoded template.
type Template struct {
	Meta  Meta
	Items []*scene.Item
}

// Store keeps templates under dir, one subdirectory per category.
type Store struct {
	dir string
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the store root.
func (st *Store) Dir() string { return st.dir }

func (st *Store) path(category, id string) string {
	return filepath.Join(st.dir, category, id+".json")
}

// Export encodes the items and writes them as the template (category, id).
// Unsupported item kinds are skipped.
func (st *Store) Export(category, id string, items []*scene.Item) error {
	category = strings.TrimSpace(category)
	id = strings.TrimSpace(id)
	if category == "" || id == "" {
		return errors.New("template category and id are required")
	}
	f := file{Meta: Meta{Category: category, ItemID: id}, Items: []scene.Record{}}
	for _, it := range items {
		if rec, ok := scene.Encode(it); ok {
			f.Items = append(f.Items, rec)
		}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(st.dir, category), 0o755); err != nil {
		return fmt.Errorf("create template dir: %w", err)
	}
	if err := os.WriteFile(st.path(category, id), data, 0o644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}

// Load reads and decodes one template. The items are sorted by ascending z
// before decoding, so stacked parts come back in paint order.
func (st *Store) Load(category, id string) (*Template, error) {
	return st.loadPath(st.path(category, id))
}

func (st *Store) loadPath(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("template %s: %w", filepath.Base(path), err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	sort.SliceStable(f.Items, func(i, j int) bool { return f.Items[i].Z < f.Items[j].Z })
	t := &Template{Meta: f.Meta}
	for _, rec := range f.Items {
		if it, ok := scene.Decode(rec); ok {
			t.Items = append(t.Items, it)
		}
	}
	return t, nil
}

// LoadAll walks the store and returns every readable template. Files that
// fail to parse or validate are logged and ignored.
func (st *Store) LoadAll() []*Template {
	logger := log.WithComponent("template")
	var out []*Template
	cats, err := os.ReadDir(st.dir)
	if err != nil {
		return nil
	}
	for _, cat := range cats {
		if !cat.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(st.dir, cat.Name()))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			path := filepath.Join(st.dir, cat.Name(), e.Name())
			t, err := st.loadPath(path)
			if err != nil {
				logger.Warn("skipping template", "path", path, "err", err)
				continue
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meta.Category != out[j].Meta.Category {
			return out[i].Meta.Category < out[j].Meta.Category
		}
		return out[i].Meta.ItemID < out[j].Meta.ItemID
	})
	return out
}

// List returns the metas of every loadable template.
func (st *Store) List() []Meta {
	var out []Meta
	for _, t := range st.LoadAll() {
		out = append(out, t.Meta)
	}
	return out
}

// InsertInto adds a template's items to the scene as one undo unit and
// selects them.
func InsertInto(s *scene.Scene, t *Template) {
	if len(t.Items) == 0 {
		return
	}
	h := s.History()
	h.BeginMacro("insert template " + t.Meta.ItemID)
	for _, it := range t.Items {
		h.Push(scene.NewAddCommand(s, it, false))
	}
	h.EndMacro()
	s.SelectOnly(t.Items...)
}
