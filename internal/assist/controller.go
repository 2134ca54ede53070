/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package assist

import (
	"scenedraw/internal/eventlog"
	"scenedraw/internal/log"
	"scenedraw/internal/scene"
)

// DefaultGhostOpacity is the preview opacity of unconfirmed items.
const DefaultGhostOpacity = 0.35

// Controller orchestrates the ghost-preview transaction protocol. It mutates
// the scene only through AddItem/RemoveItem and the shared command history,
// so committed suggestions sit in the same undo stream as manual edits.
//
// The controller runs on the scene's event-loop goroutine. Present blocks
// that flow, but the loop stays reentrant: another invocation may replace
// the ghost set while a decision is pending, which is why every ghost
// operation is guarded by a generation counter.
type Controller struct {
	scene     *scene.Scene
	oracle    Oracle
	presenter Presenter
	events    eventlog.Logger

	ghosts     []*scene.Item
	generation uint64
	suppressed map[string]bool

	// GhostOpacity is applied to preview items.
	GhostOpacity float64
	// AutoEnabled gates the item-created trigger.
	AutoEnabled bool
}

// NewController wires a controller to a scene. Call Attach to enable the
// auto trigger on item creation.
func NewController(s *scene.Scene, o Oracle, p Presenter) *Controller {
	return &Controller{
		scene:        s,
		oracle:       o,
		presenter:    p,
		suppressed:   make(map[string]bool),
		GhostOpacity: DefaultGhostOpacity,
		AutoEnabled:  true,
	}
}

// SetEventLogger installs the interaction event sink.
func (c *Controller) SetEventLogger(l eventlog.Logger) { c.events = l }

// Attach subscribes to the scene's item-created notification. Each
// interactively drawn item may then trigger an automatic suggestion.
func (c *Controller) Attach() {
	c.scene.OnItemCreated(func(it *scene.Item) {
		if c.AutoEnabled {
			c.run(TriggerAuto, it.Kind.String())
		}
	})
}

// Suggest runs a manual suggestion flow. Manual flows are never suppressed
// and surface an abstention through the presenter.
func (c *Controller) Suggest() {
	c.run(TriggerManual, "")
}

// snapshot builds the oracle context from the current scene.
func (c *Controller) snapshot(trigger Trigger, createdKind string) Context {
	ctx := Context{
		Trigger:        trigger,
		CreatedKind:    createdKind,
		AutoSuppressed: c.suppressed,
	}
	for _, it := range c.scene.Items() {
		switch it.Tag {
		case TagCatEar:
			ctx.HasCatEars = true
			continue
		case TagRoofTriangle:
			ctx.HasRoofTriangle = true
			continue
		}
		switch it.Kind {
		case scene.KindEllipse:
			ctx.HasEllipse = true
		case scene.KindRect:
			ctx.HasRect = true
		}
	}
	return ctx
}

func (c *Controller) run(trigger Trigger, createdKind string) {
	logger := log.WithComponent("assist")
	prop := c.oracle.Propose(c.snapshot(trigger, createdKind))
	if prop == nil {
		if trigger == TriggerManual {
			c.presenter.NoSuggestion()
			eventlog.Emit(c.events, "suggestion_abstain", eventlog.Fields{Notes: string(trigger)})
		}
		return
	}
	if trigger == TriggerAuto && c.suppressed[prop.SuggestionID] {
		return
	}

	// at most one preview at a time
	c.clearGhosts()
	items := prop.Build(c.scene)
	if len(items) == 0 {
		return
	}
	for _, it := range items {
		it.Enabled = false
		it.Opacity = c.GhostOpacity
		it.Selectable = false
		it.Movable = false
		c.scene.AddItem(it)
	}
	c.ghosts = items
	c.generation++
	gen := c.generation
	eventlog.Emit(c.events, "suggestion_proposed", eventlog.Fields{Notes: prop.SuggestionID})

	// Every exit from here on rolls the preview back unless the accept
	// path committed first. A stale generation means a newer flow owns
	// the ghost set, so this flow must not touch it.
	committed := false
	defer func() {
		if committed || c.generation != gen {
			return
		}
		c.clearGhosts()
	}()

	view := View{
		Label:          prop.Label,
		UncertaintyPct: prop.UncertaintyPct,
		Explanation:    prop.Explanation,
		ActionHint:     prop.ActionHint,
	}
	if prop.PreviewImagePath != "" {
		if img, err := LoadThumbnail(prop.PreviewImagePath, previewMaxW, previewMaxH); err == nil {
			view.Preview = img
		} else {
			logger.Debug("preview image unavailable", "path", prop.PreviewImagePath, "err", err)
		}
	}

	decision := c.presenter.Present(view)
	eventlog.Emit(c.events, "suggestion_"+decision.String(), eventlog.Fields{Notes: prop.SuggestionID})
	if c.generation != gen {
		return
	}
	if decision != DecisionAccept {
		if trigger == TriggerAuto {
			c.suppressed[prop.SuggestionID] = true
		}
		return
	}

	// commit: the items are already live, so the adds use already-present
	// semantics and the whole suggestion undoes as one unit
	c.scene.History().BeginMacro("suggestion: " + prop.Label)
	for _, it := range c.ghosts {
		it.Enabled = true
		it.Opacity = 1
		it.Selectable = true
		it.Movable = true
		c.scene.History().Push(scene.NewAddCommand(c.scene, it, true))
	}
	c.scene.History().EndMacro()
	c.ghosts = nil
	committed = true
	logger.Info("suggestion committed", "id", prop.SuggestionID, "items", len(items))
}

// clearGhosts detaches every preview item still in the scene. Items removed
// through an unrelated path count as already cleared.
func (c *Controller) clearGhosts() {
	for _, it := range c.ghosts {
		c.scene.RemoveItem(it)
	}
	c.ghosts = nil
}

// HasGhosts reports whether a preview is currently live.
func (c *Controller) HasGhosts() bool { return len(c.ghosts) > 0 }
