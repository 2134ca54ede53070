/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package assist runs the suggestion flow: ask an oracle for a proposal,
// preview it as ghost items in the scene, and commit or roll it back on the
// user's decision. Ghost items are never left behind: every exit path except
// an explicit commit removes them.
package assist

import (
	"image"

	"scenedraw/internal/scene"
)

// Trigger is the origin of a suggestion request.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto"
)

// Context is the scene snapshot handed to the oracle.
type Context struct {
	Trigger     Trigger
	CreatedKind string // kind of the just-created item on auto triggers, else ""

	HasEllipse      bool
	HasRect         bool
	HasCatEars      bool
	HasRoofTriangle bool

	// AutoSuppressed holds suggestion ids the user already declined this
	// session. Oracles must abstain from these on auto triggers.
	AutoSuppressed map[string]bool
}

// Proposal is one concrete suggestion. Build instantiates the suggested
// items; they are not yet part of any scene.
type Proposal struct {
	SuggestionID     string
	Label            string
	UncertaintyPct   int
	Explanation      []string // at most three reasons
	ActionHint       string
	PreviewImagePath string
	Build            func(s *scene.Scene) []*scene.Item
}

// Oracle maps a context snapshot to a proposal, or nil to abstain.
type Oracle interface {
	Propose(ctx Context) *Proposal
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx Context) *Proposal

func (f OracleFunc) Propose(ctx Context) *Proposal { return f(ctx) }

// Decision is the user's answer to a presented proposal.
type Decision int

const (
	// DecisionCancel covers dismissing the preview without choosing.
	DecisionCancel Decision = iota
	DecisionAccept
	DecisionIgnore
	DecisionOverride
)

func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionIgnore:
		return "ignore"
	case DecisionOverride:
		return "override"
	}
	return "cancel"
}

// View is what the presenter shows while the ghost preview is live.
type View struct {
	Label          string
	UncertaintyPct int
	Explanation    []string
	ActionHint     string
	Preview        image.Image // optional thumbnail, may be nil
}

// Presenter blocks until the user decides. Dismissal without a choice must
// return DecisionCancel. NoSuggestion surfaces a manual-trigger abstention.
type Presenter interface {
	Present(v View) Decision
	NoSuggestion()
}
