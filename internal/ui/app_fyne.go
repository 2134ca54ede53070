//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"scenedraw/internal/assist"
	"scenedraw/internal/crash"
	"scenedraw/internal/export"
	"scenedraw/internal/geom"
	applog "scenedraw/internal/log"
	"scenedraw/internal/scene"
	"scenedraw/internal/template"
)

// Run starts the Fyne-based desktop editor shell.
//
// The scene is single-owner: every mutation runs on one worker goroutine so
// that suggestion dialogs can block for a decision without stalling the Fyne
// event loop. UI callbacks only enqueue closures onto that worker.
func Run(opts Options) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	sc := scene.NewScene()
	defer func() { crash.Recover(sc) }()

	cfg := opts.Config
	sc.SetMoveEpsilon(cfg.Editor.MoveEpsilon)
	sc.SetPasteOffset(geom.Pt{X: cfg.Editor.PasteOffsetX, Y: cfg.Editor.PasteOffsetY})
	sc.SetStrokeWidth(cfg.Editor.StrokeWidth)
	if opts.Events != nil {
		sc.SetEventLogger(opts.Events)
	}

	fyneApp := app.NewWithID("scenedraw")
	w := fyneApp.NewWindow("SceneDraw")

	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", cfg.Editor.CanvasWidth)
	winH := prefs.IntWithFallback("window.height", cfg.Editor.CanvasHeight)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	sc.SetClipboard(&systemClipboard{cb: fyneApp.Clipboard()})

	status := widget.NewLabel("Ready")
	work := make(chan func(), 64)
	go func() {
		defer func() { crash.Recover(sc) }()
		for fn := range work {
			fn()
		}
	}()

	var editor *EditorCanvas
	dispatch := func(fn func()) {
		work <- func() {
			fn()
			text := statusText(sc)
			fyne.Do(func() {
				status.SetText(text)
				editor.Refresh()
			})
		}
	}
	editor = NewEditorCanvas(sc, float32(cfg.Editor.CanvasWidth), float32(cfg.Editor.CanvasHeight), dispatch)

	presenter := &dialogPresenter{win: w, status: status, refresh: editor.Refresh}
	ctrl := assist.NewController(sc, assist.Heuristics(), presenter)
	ctrl.GhostOpacity = cfg.Editor.GhostOpacity
	ctrl.AutoEnabled = cfg.General.AutoSuggestions
	if opts.Events != nil {
		ctrl.SetEventLogger(opts.Events)
	}
	ctrl.Attach()

	tools := widget.NewRadioGroup([]string{"select", "pen", "eraser", "line", "rect", "ellipse"}, func(name string) {
		t, ok := toolByName(name)
		if !ok {
			return
		}
		dispatch(func() { sc.SetTool(t) })
	})
	tools.Horizontal = true
	tools.SetSelected("select")

	strokeBtn := widget.NewButton("Stroke…", func() {
		dialog.ShowColorPicker("Stroke Color", "Outline color for new items", func(c color.Color) {
			col := fromColor(c)
			dispatch(func() { sc.SetStrokeColor(col) })
		}, w)
	})
	fillBtn := widget.NewButton("Fill…", func() {
		dialog.ShowColorPicker("Fill Color", "Interior color for new shapes", func(c color.Color) {
			col := fromColor(c)
			dispatch(func() { sc.SetFillColor(col) })
		}, w)
	})
	noFillBtn := widget.NewButton("No Fill", func() {
		dispatch(func() { sc.SetNoFill() })
	})

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { dispatch(func() { sc.History().Undo() }) }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { dispatch(func() { sc.History().Redo() }) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCutIcon(), func() { dispatch(sc.CutSelection) }),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() { dispatch(sc.CopySelection) }),
		widget.NewToolbarAction(theme.ContentPasteIcon(), func() { dispatch(sc.Paste) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.QuestionIcon(), func() { dispatch(ctrl.Suggest) }),
	)

	exportSVG := func() {
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			dispatch(func() {
				opt := export.SVGOptions{Width: float64(cfg.Editor.CanvasWidth), Height: float64(cfg.Editor.CanvasHeight)}
				if err := export.ExportSVG(itemsByZ(sc), path, opt); err != nil {
					l.Error("svg export failed", "err", err)
					fyne.Do(func() { dialog.ShowError(err, w) })
				}
			})
		}, w)
	}
	exportPDF := func() {
		dialog.ShowFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			dispatch(func() {
				opt := export.PDFOptions{Width: float64(cfg.Editor.CanvasWidth), Height: float64(cfg.Editor.CanvasHeight), Title: "SceneDraw Export"}
				if err := export.ExportPDF(itemsByZ(sc), path, opt); err != nil {
					l.Error("pdf export failed", "err", err)
					fyne.Do(func() { dialog.ShowError(err, w) })
				}
			})
		}, w)
	}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Export SVG…", exportSVG),
		fyne.NewMenuItem("Export PDF…", exportPDF),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { dispatch(func() { sc.History().Undo() }) }),
		fyne.NewMenuItem("Redo", func() { dispatch(func() { sc.History().Redo() }) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Cut", func() { dispatch(sc.CutSelection) }),
		fyne.NewMenuItem("Copy", func() { dispatch(sc.CopySelection) }),
		fyne.NewMenuItem("Paste", func() { dispatch(sc.Paste) }),
		fyne.NewMenuItem("Duplicate", func() { dispatch(sc.DuplicateSelection) }),
		fyne.NewMenuItem("Delete", func() { dispatch(func() { deleteSelection(sc) }) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Scene", func() { dispatch(sc.Clear) }),
	)
	menus := []*fyne.Menu{fileMenu, editMenu}
	if opts.Templates != nil {
		if m := templateMenu(opts.Templates, sc, dispatch); m != nil {
			menus = append(menus, m)
		}
	}
	menus = append(menus, fyne.NewMenu("Assist",
		fyne.NewMenuItem("Suggest Now", func() { dispatch(ctrl.Suggest) }),
	))
	w.SetMainMenu(fyne.NewMainMenu(menus...))

	addShortcuts(w, sc, dispatch)

	top := container.NewVBox(toolbar, container.NewHBox(tools, strokeBtn, fillBtn, noFillBtn))
	w.SetContent(container.NewBorder(top, status, nil, nil, container.NewScroll(editor)))

	w.SetOnClosed(func() {
		prefs.SetInt("window.width", int(w.Canvas().Size().Width))
		prefs.SetInt("window.height", int(w.Canvas().Size().Height))
		close(work)
	})
	w.ShowAndRun()
	return nil
}

func toolByName(name string) (scene.Tool, bool) {
	switch name {
	case "select":
		return scene.ToolSelect, true
	case "pen":
		return scene.ToolPen, true
	case "eraser":
		return scene.ToolEraser, true
	case "line":
		return scene.ToolLine, true
	case "rect":
		return scene.ToolRect, true
	case "ellipse":
		return scene.ToolEllipse, true
	}
	return scene.ToolSelect, false
}

func statusText(s *scene.Scene) string {
	txt := fmt.Sprintf("%d items — tool: %s", s.Len(), s.Tool())
	if s.History().CanUndo() {
		txt += " — undo: " + s.History().UndoText()
	}
	return txt
}

func itemsByZ(s *scene.Scene) []*scene.Item {
	items := append([]*scene.Item(nil), s.Items()...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Z < items[j].Z })
	return items
}

// deleteSelection removes the selected items as one undoable step without
// touching the clipboard.
func deleteSelection(s *scene.Scene) {
	sel := s.Selection()
	if len(sel) == 0 {
		return
	}
	s.History().BeginMacro("delete")
	for _, it := range sel {
		s.History().Push(scene.NewRemoveCommand(s, it))
	}
	s.History().EndMacro()
}

func templateMenu(store *template.Store, sc *scene.Scene, dispatch func(func())) *fyne.Menu {
	metas := store.List()
	if len(metas) == 0 {
		return nil
	}
	items := make([]*fyne.MenuItem, 0, len(metas))
	for _, m := range metas {
		category, id := m.Category, m.ItemID
		items = append(items, fyne.NewMenuItem(category+" / "+id, func() {
			dispatch(func() {
				t, err := store.Load(category, id)
				if err != nil {
					return
				}
				template.InsertInto(sc, t)
			})
		}))
	}
	return fyne.NewMenu("Templates", items...)
}

func addShortcuts(w fyne.Window, sc *scene.Scene, dispatch func(func())) {
	bind := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	bind(fyne.KeyZ, fyne.KeyModifierControl, func() { dispatch(func() { sc.History().Undo() }) })
	bind(fyne.KeyY, fyne.KeyModifierControl, func() { dispatch(func() { sc.History().Redo() }) })
	bind(fyne.KeyX, fyne.KeyModifierControl, func() { dispatch(sc.CutSelection) })
	bind(fyne.KeyC, fyne.KeyModifierControl, func() { dispatch(sc.CopySelection) })
	bind(fyne.KeyV, fyne.KeyModifierControl, func() { dispatch(sc.Paste) })
	bind(fyne.KeyD, fyne.KeyModifierControl, func() { dispatch(sc.DuplicateSelection) })
}

// systemClipboard bridges the OS clipboard into the editor. Calls hop onto
// the Fyne thread because the worker goroutine owns the scene.
type systemClipboard struct {
	cb fyne.Clipboard
}

func (c *systemClipboard) Text() string {
	var s string
	fyne.DoAndWait(func() { s = c.cb.Content() })
	return s
}

func (c *systemClipboard) SetText(s string) {
	fyne.DoAndWait(func() { c.cb.SetContent(s) })
}

// dialogPresenter shows ghost previews in a modal dialog and blocks the
// worker goroutine until the user decides. Closing the dialog without a
// choice counts as cancel.
type dialogPresenter struct {
	win     fyne.Window
	status  *widget.Label
	refresh func()
}

func (p *dialogPresenter) Present(v assist.View) assist.Decision {
	ch := make(chan assist.Decision, 1)
	var once sync.Once
	send := func(d assist.Decision) { once.Do(func() { ch <- d }) }

	fyne.Do(func() {
		p.refresh()

		body := []fyne.CanvasObject{
			widget.NewLabel(fmt.Sprintf("Uncertainty: %d%%", v.UncertaintyPct)),
		}
		if len(v.Explanation) > 0 {
			body = append(body, widget.NewLabel(strings.Join(v.Explanation, "\n")))
		}
		if v.ActionHint != "" {
			body = append(body, widget.NewLabel(v.ActionHint))
		}
		if v.Preview != nil {
			img := canvas.NewImageFromImage(v.Preview)
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(160, 120))
			body = append(body, img)
		}

		var d *dialog.CustomDialog
		accept := widget.NewButton("Accept", func() { send(assist.DecisionAccept); d.Hide() })
		accept.Importance = widget.HighImportance
		ignore := widget.NewButton("Ignore", func() { send(assist.DecisionIgnore); d.Hide() })
		override := widget.NewButton("Draw It Myself", func() { send(assist.DecisionOverride); d.Hide() })
		body = append(body, container.NewHBox(accept, ignore, override))

		d = dialog.NewCustomWithoutButtons(v.Label, container.NewVBox(body...), p.win)
		d.SetOnClosed(func() { send(assist.DecisionCancel) })
		d.Show()
	})
	return <-ch
}

func (p *dialogPresenter) NoSuggestion() {
	fyne.Do(func() { p.status.SetText("No suggestion available right now") })
}

// EditorCanvas is the drawing surface. It forwards pointer gestures to the
// scene through the dispatch hook and rebuilds its render objects from the
// item list on every refresh.
type EditorCanvas struct {
	widget.BaseWidget
	scene    *scene.Scene
	dispatch func(func())
	minSize  fyne.Size
}

var (
	_ desktop.Mouseable = (*EditorCanvas)(nil)
	_ fyne.Draggable    = (*EditorCanvas)(nil)
)

func NewEditorCanvas(s *scene.Scene, minW, minH float32, dispatch func(func())) *EditorCanvas {
	ec := &EditorCanvas{scene: s, dispatch: dispatch, minSize: fyne.NewSize(minW, minH)}
	ec.ExtendBaseWidget(ec)
	return ec
}

func scenePt(pos fyne.Position) geom.Pt {
	return geom.Pt{X: float64(pos.X), Y: float64(pos.Y)}
}

func (e *EditorCanvas) MouseDown(ev *desktop.MouseEvent) {
	p := scenePt(ev.Position)
	e.dispatch(func() { e.scene.PointerDown(p) })
}

func (e *EditorCanvas) MouseUp(ev *desktop.MouseEvent) {
	p := scenePt(ev.Position)
	e.dispatch(func() { e.scene.PointerUp(p) })
}

func (e *EditorCanvas) Dragged(ev *fyne.DragEvent) {
	p := scenePt(ev.Position)
	e.dispatch(func() { e.scene.PointerMove(p) })
}

func (e *EditorCanvas) DragEnd() {}

func (e *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	r := &editorRenderer{ec: e, bg: bg, objs: []fyne.CanvasObject{bg}}
	r.rebuild()
	return r
}

type editorRenderer struct {
	ec   *EditorCanvas
	bg   *canvas.Rectangle
	objs []fyne.CanvasObject
}

func (r *editorRenderer) Destroy()                     {}
func (r *editorRenderer) Objects() []fyne.CanvasObject { return r.objs }
func (r *editorRenderer) MinSize() fyne.Size           { return r.ec.minSize }

func (r *editorRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
}

func (r *editorRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.ec.Size())
	canvas.Refresh(r.ec)
}

func (r *editorRenderer) rebuild() {
	objs := []fyne.CanvasObject{r.bg}
	for _, it := range itemsByZ(r.ec.scene) {
		objs = append(objs, itemObjects(it)...)
	}
	for _, it := range r.ec.scene.Selection() {
		objs = append(objs, selectionBox(it))
	}
	r.objs = objs
}

// itemObjects maps one item to fyne canvas primitives. Fyne v2.6 has no
// polygon primitive, so freehand strokes and polygons render as line
// segments; polygon fill is not shown on canvas (export renders it).
func itemObjects(it *scene.Item) []fyne.CanvasObject {
	strokeCol := nrgba(it.Stroke.Color, it.Opacity)
	sw := float32(it.Stroke.Width)
	switch it.Kind {
	case scene.KindFreehand:
		out := make([]fyne.CanvasObject, 0, len(it.Points))
		for i := 1; i < len(it.Points); i++ {
			out = append(out, segment(it.Points[i-1], it.Points[i], it.Pos, strokeCol, sw))
		}
		return out
	case scene.KindLine:
		return []fyne.CanvasObject{segment(it.A, it.B, it.Pos, strokeCol, sw)}
	case scene.KindRect:
		rect := canvas.NewRectangle(fillColor(it))
		rect.StrokeColor = strokeCol
		rect.StrokeWidth = sw
		rect.Move(fyne.NewPos(float32(it.Box.X+it.Pos.X), float32(it.Box.Y+it.Pos.Y)))
		rect.Resize(fyne.NewSize(float32(it.Box.W), float32(it.Box.H)))
		return []fyne.CanvasObject{rect}
	case scene.KindEllipse:
		// a Circle resized to a non-square box draws an ellipse
		ell := canvas.NewCircle(fillColor(it))
		ell.StrokeColor = strokeCol
		ell.StrokeWidth = sw
		ell.Move(fyne.NewPos(float32(it.Box.X+it.Pos.X), float32(it.Box.Y+it.Pos.Y)))
		ell.Resize(fyne.NewSize(float32(it.Box.W), float32(it.Box.H)))
		return []fyne.CanvasObject{ell}
	case scene.KindPolygon:
		n := len(it.Points)
		if n < 2 {
			return nil
		}
		out := make([]fyne.CanvasObject, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, segment(it.Points[i], it.Points[(i+1)%n], it.Pos, strokeCol, sw))
		}
		return out
	}
	return nil
}

func segment(a, b, off geom.Pt, col color.Color, width float32) *canvas.Line {
	l := canvas.NewLine(col)
	l.StrokeWidth = width
	l.Position1 = fyne.NewPos(float32(a.X+off.X), float32(a.Y+off.Y))
	l.Position2 = fyne.NewPos(float32(b.X+off.X), float32(b.Y+off.Y))
	return l
}

func selectionBox(it *scene.Item) fyne.CanvasObject {
	b := it.Bounds()
	box := canvas.NewRectangle(color.Transparent)
	box.StrokeColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
	box.StrokeWidth = 1
	box.Move(fyne.NewPos(float32(b.X-2), float32(b.Y-2)))
	box.Resize(fyne.NewSize(float32(b.W+4), float32(b.H+4)))
	return box
}

func nrgba(c scene.Color, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * opacity)}
}

func fillColor(it *scene.Item) color.Color {
	if it.Fill.None() {
		return color.Transparent
	}
	return nrgba(it.Fill.Color, it.Opacity)
}

func fromColor(c color.Color) scene.Color {
	r, g, b, a := c.RGBA()
	return scene.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
