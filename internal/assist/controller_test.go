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
	"testing"

	"scenedraw/internal/geom"
	"scenedraw/internal/scene"
)

// stubPresenter answers Present from a queue of decisions and can run a
// callback while the preview is "open".
type stubPresenter struct {
	decisions    []Decision
	presented    int
	noSuggestion int
	during       func()
}

func (p *stubPresenter) Present(v View) Decision {
	p.presented++
	if f := p.during; f != nil {
		p.during = nil
		f()
	}
	if len(p.decisions) == 0 {
		return DecisionCancel
	}
	d := p.decisions[0]
	p.decisions = p.decisions[1:]
	return d
}

func (p *stubPresenter) NoSuggestion() { p.noSuggestion++ }

func drawEllipse(s *scene.Scene, a, b geom.Pt) {
	s.SetTool(scene.ToolEllipse)
	s.PointerDown(a)
	s.PointerMove(b)
	s.PointerUp(b)
}

func countTagged(s *scene.Scene, tag string) int {
	n := 0
	for _, it := range s.Items() {
		if it.Tag == tag {
			n++
		}
	}
	return n
}

func TestIgnoreLeavesSceneAndHistoryUntouched(t *testing.T) {
	s := scene.NewScene()
	drawEllipse(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 60, Y: 50})
	wantLen, wantHist := s.Len(), s.History().Len()

	p := &stubPresenter{decisions: []Decision{DecisionIgnore}}
	c := NewController(s, Heuristics(), p)
	c.Suggest()

	if p.presented != 1 {
		t.Fatalf("expected one preview, got %d", p.presented)
	}
	if s.Len() != wantLen {
		t.Fatalf("ghosts left behind: %d items, want %d", s.Len(), wantLen)
	}
	if s.History().Len() != wantHist {
		t.Fatalf("ignore must not create an undo entry")
	}
	if c.HasGhosts() {
		t.Fatalf("ghost set must be cleared")
	}
}

func TestAcceptCommitsAsOneUndoUnit(t *testing.T) {
	s := scene.NewScene()
	drawEllipse(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 60, Y: 50})

	p := &stubPresenter{decisions: []Decision{DecisionAccept}}
	c := NewController(s, Heuristics(), p)
	c.Suggest()

	if got := countTagged(s, TagCatEar); got != 2 {
		t.Fatalf("expected 2 committed ears, got %d", got)
	}
	for _, it := range s.Items() {
		if it.Tag != TagCatEar {
			continue
		}
		if !it.Enabled || !it.Selectable || !it.Movable || it.Opacity != 1 {
			t.Fatalf("committed item not restored to normal: %+v", it)
		}
	}
	if c.HasGhosts() {
		t.Fatalf("commit must release the ghost set without removing items")
	}
	s.History().Undo()
	if countTagged(s, TagCatEar) != 0 {
		t.Fatalf("one undo must remove the whole suggestion")
	}
	if s.Len() != 1 {
		t.Fatalf("undo removed too much: %d items", s.Len())
	}
	s.History().Redo()
	if countTagged(s, TagCatEar) != 2 {
		t.Fatalf("redo must restore the whole suggestion")
	}
}

func TestGhostsAreNotInteractive(t *testing.T) {
	s := scene.NewScene()
	drawEllipse(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 60, Y: 50})

	var seen []*scene.Item
	p := &stubPresenter{decisions: []Decision{DecisionCancel}}
	p.during = func() {
		for _, it := range s.Items() {
			if it.Tag == TagCatEar {
				seen = append(seen, it)
			}
		}
	}
	c := NewController(s, Heuristics(), p)
	c.Suggest()

	if len(seen) != 2 {
		t.Fatalf("expected 2 live ghosts during preview, got %d", len(seen))
	}
	for _, it := range seen {
		if it.Enabled || it.Selectable || it.Movable || it.Opacity != DefaultGhostOpacity {
			t.Fatalf("ghost flags wrong: %+v", it)
		}
	}
	if countTagged(s, TagCatEar) != 0 {
		t.Fatalf("cancel must remove the ghosts")
	}
}

func TestManualAbstainSurfacesNotice(t *testing.T) {
	s := scene.NewScene()
	p := &stubPresenter{}
	c := NewController(s, Heuristics(), p)
	c.Suggest()
	if p.noSuggestion != 1 {
		t.Fatalf("manual abstain must surface a notice, got %d", p.noSuggestion)
	}
	if p.presented != 0 {
		t.Fatalf("nothing to present on abstain")
	}
}

func TestAutoDeclineSuppressesRepeat(t *testing.T) {
	s := scene.NewScene()
	p := &stubPresenter{decisions: []Decision{DecisionIgnore, DecisionIgnore}}
	c := NewController(s, Heuristics(), p)
	c.Attach()

	drawEllipse(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 60, Y: 50})
	if p.presented != 1 {
		t.Fatalf("auto trigger must fire on the first ellipse, got %d", p.presented)
	}

	// same suggestion is suppressed for further auto triggers
	drawEllipse(s, geom.Pt{X: 100, Y: 10}, geom.Pt{X: 150, Y: 50})
	if p.presented != 1 {
		t.Fatalf("declined auto suggestion must not repeat, got %d", p.presented)
	}

	// manual invocations are never suppressed
	c.Suggest()
	if p.presented != 2 {
		t.Fatalf("manual trigger must bypass suppression, got %d", p.presented)
	}
}

func TestPresenterFailureStillClearsGhosts(t *testing.T) {
	s := scene.NewScene()
	drawEllipse(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 60, Y: 50})

	p := &stubPresenter{during: func() { panic("presenter crashed") }}
	c := NewController(s, Heuristics(), p)
	func() {
		defer func() { _ = recover() }()
		c.Suggest()
	}()

	if countTagged(s, TagCatEar) != 0 || c.HasGhosts() {
		t.Fatalf("ghosts must be cleared even when the decision step fails")
	}
}

func TestReentrantFlowDoesNotClobberNewerGhosts(t *testing.T) {
	s := scene.NewScene()

	// an oracle that proposes on every call, so the reentrant flow really
	// replaces the ghost set instead of abstaining on the outer ghosts
	n := 0
	oracle := OracleFunc(func(Context) *Proposal {
		n++
		at := float64(n) * 20
		return &Proposal{
			SuggestionID: "boxes",
			Label:        "a box",
			Build: func(*scene.Scene) []*scene.Item {
				it := scene.NewItem(scene.KindRect)
				it.Box = geom.R(at, 0, 10, 10)
				it.Tag = "assistant:box"
				return []*scene.Item{it}
			},
		}
	})

	// outer flow is answered with Ignore, but while its preview is open a
	// second flow starts, replaces the ghost set, and commits
	p := &stubPresenter{decisions: []Decision{DecisionAccept, DecisionIgnore}}
	c := NewController(s, oracle, p)
	p.during = func() { c.Suggest() }
	c.Suggest()

	if p.presented != 2 {
		t.Fatalf("both flows must present, got %d", p.presented)
	}
	if got := countTagged(s, "assistant:box"); got != 1 {
		t.Fatalf("stale flow must not touch the newer commit, got %d boxes", got)
	}
	if s.Len() != 1 {
		t.Fatalf("outer ghost must be gone, inner commit kept: %d items", s.Len())
	}
	for _, it := range s.Items() {
		if !it.Enabled || it.Opacity != 1 {
			t.Fatalf("committed item left in ghost state: %+v", it)
		}
	}
	if s.History().Len() != 1 {
		t.Fatalf("exactly the inner commit must be undoable, got %d entries", s.History().Len())
	}
	s.History().Undo()
	if s.Len() != 0 {
		t.Fatalf("commit must still be one undo unit")
	}
}

func TestGhostsRemovedElsewhereTolerated(t *testing.T) {
	s := scene.NewScene()
	drawEllipse(s, geom.Pt{X: 10, Y: 10}, geom.Pt{X: 60, Y: 50})

	p := &stubPresenter{decisions: []Decision{DecisionCancel}}
	p.during = func() {
		for _, it := range s.Items() {
			if it.Tag == TagCatEar {
				s.RemoveItem(it)
			}
		}
	}
	c := NewController(s, Heuristics(), p)
	c.Suggest()
	if c.HasGhosts() || s.Len() != 1 {
		t.Fatalf("already-removed ghosts must count as cleared")
	}
}

func TestRoofHeuristicTargetsFirstRect(t *testing.T) {
	s := scene.NewScene()
	s.SetTool(scene.ToolRect)
	s.PointerDown(geom.Pt{X: 0, Y: 40})
	s.PointerMove(geom.Pt{X: 50, Y: 80})
	s.PointerUp(geom.Pt{X: 50, Y: 80})

	p := &stubPresenter{decisions: []Decision{DecisionAccept}}
	c := NewController(s, Heuristics(), p)
	c.Suggest()

	if countTagged(s, TagRoofTriangle) != 1 {
		t.Fatalf("expected one roof triangle")
	}
	// a second invocation abstains: the roof already exists
	c.Suggest()
	if p.noSuggestion != 1 {
		t.Fatalf("oracle must abstain once the roof exists")
	}
}
