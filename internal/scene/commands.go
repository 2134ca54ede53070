/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"

	"scenedraw/internal/geom"
)

// Reversible scene mutations. Each command checks current scene membership
// before acting, so double invocation or a removal through an unrelated path
// degrades to a no-op rather than corrupting state.

// AddCommand inserts an item. With alreadyPresent the first Redo is a no-op:
// interactively drawn items and committed ghosts are live before the command
// is recorded. Redo after an Undo performs the real insertion.
type AddCommand struct {
	scene          *Scene
	item           *Item
	alreadyPresent bool
}

// NewAddCommand records the insertion of item into s. alreadyPresent marks
// items that are live at construction time.
func NewAddCommand(s *Scene, item *Item, alreadyPresent bool) *AddCommand {
	return &AddCommand{scene: s, item: item, alreadyPresent: alreadyPresent}
}

func (c *AddCommand) Redo() {
	if c.alreadyPresent {
		c.alreadyPresent = false
		return
	}
	if !c.scene.contains(c.item) {
		c.scene.attach(c.item)
	}
}

func (c *AddCommand) Undo() {
	if c.scene.contains(c.item) {
		c.scene.detach(c.item)
	}
}

func (c *AddCommand) Text() string { return "add " + c.item.Kind.String() }

// RemoveCommand deletes an item, remembering its position so Undo restores
// it exactly where it was.
type RemoveCommand struct {
	scene *Scene
	item  *Item
	pos   geom.Pt
}

func NewRemoveCommand(s *Scene, item *Item) *RemoveCommand {
	return &RemoveCommand{scene: s, item: item, pos: item.Pos}
}

func (c *RemoveCommand) Redo() {
	if c.scene.contains(c.item) {
		c.scene.detach(c.item)
	}
}

func (c *RemoveCommand) Undo() {
	if !c.scene.contains(c.item) {
		c.item.Pos = c.pos
		c.scene.attach(c.item)
	}
}

func (c *RemoveCommand) Text() string { return "remove " + c.item.Kind.String() }

// MoveBatchCommand moves a set of items between two position snapshots.
// Items absent from a snapshot, or no longer in the scene, are untouched.
type MoveBatchCommand struct {
	scene *Scene
	old   map[*Item]geom.Pt
	now   map[*Item]geom.Pt
}

func NewMoveBatchCommand(s *Scene, old, now map[*Item]geom.Pt) *MoveBatchCommand {
	return &MoveBatchCommand{scene: s, old: old, now: now}
}

func (c *MoveBatchCommand) apply(snap map[*Item]geom.Pt) {
	for it, p := range snap {
		if c.scene.contains(it) {
			it.Pos = p
		}
	}
}

func (c *MoveBatchCommand) Redo() { c.apply(c.now) }
func (c *MoveBatchCommand) Undo() { c.apply(c.old) }

func (c *MoveBatchCommand) Text() string {
	if len(c.now) == 1 {
		return "move item"
	}
	return fmt.Sprintf("move %d items", len(c.now))
}
