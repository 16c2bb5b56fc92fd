// Package panel is the layout and input model of the effect control panel: one collapsible
// folder per stage, an enabled checkbox, and a slider per parameter. It knows nothing about
// drawing; the ui package renders its rows and feeds it pointer input.
package panel

import (
	"fmt"
	"math"
	"strconv"

	"fxdemo/internal/pipeline"
)

// RowKind is what a row shows and how it reacts to the pointer.
type RowKind int

const (
	Folder RowKind = iota
	Toggle
	Slider
)

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X, Y, W, H float32
}

func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Row is one laid-out line of the panel.
type Row struct {
	Kind    RowKind
	Stage   string
	Param   pipeline.ParamSpec // Slider only
	Text    string
	Rect    Rect
	Open    bool    // Folder: expanded
	On      bool    // Folder and Toggle: stage enabled
	Value   float64 // Slider
	Fill    float32 // Slider: position in [0, 1]
	Track   Rect    // Slider: the draggable part of the row
	Enabled bool    // false for the render toggle, which cannot be switched off
}

// Model lays out rows from the pipeline and turns presses and drags into Events.
type Model struct {
	x, y, width, rowHeight float32
	labelWidth             float32
	open                   map[string]bool
	rows                   []Row
	drag                   int // index into rows, -1 when idle
	last                   float64
}

// New returns a panel anchored at (x, y). Every folder starts collapsed.
func New(x, y, width, rowHeight float32) *Model {
	return &Model{x: x, y: y, width: width, rowHeight: rowHeight, labelWidth: width * 0.45, open: make(map[string]bool), drag: -1}
}

// Move re-anchors the panel, e.g. after a window resize.
func (m *Model) Move(x, y float32) { m.x, m.y = x, y }

// SetOpen expands or collapses a stage folder.
func (m *Model) SetOpen(stage string, open bool) { m.open[stage] = open }

// Layout rebuilds the rows from stages. The returned slice is reused by the next call.
func (m *Model) Layout(stages []pipeline.Stage) []Row {
	m.rows = m.rows[:0]
	y := m.y
	next := func() Rect {
		r := Rect{X: m.x, Y: y, W: m.width, H: m.rowHeight}
		y += m.rowHeight
		return r
	}
	for _, s := range stages {
		open := m.open[s.ID()]
		marker := "+ "
		if open {
			marker = "- "
		}
		m.rows = append(m.rows, Row{Kind: Folder, Stage: s.ID(), Text: marker + s.Kind().Title(), Rect: next(), Open: open, On: s.Enabled(), Enabled: true})
		if !open {
			continue
		}
		m.rows = append(m.rows, Row{Kind: Toggle, Stage: s.ID(), Text: "Enabled", Rect: next(), On: s.Enabled(), Enabled: s.Kind() != pipeline.Render})
		for _, ps := range pipeline.Params(s.Kind()) {
			v, _ := s.Value(ps.Name)
			r := next()
			m.rows = append(m.rows, Row{
				Kind:    Slider,
				Stage:   s.ID(),
				Param:   ps,
				Text:    ps.Label + "  " + format(ps, v),
				Rect:    r,
				Value:   v,
				Fill:    float32(ps.Fraction(v)),
				Track:   Rect{X: r.X + m.labelWidth, Y: r.Y, W: r.W - m.labelWidth, H: r.H},
				Enabled: true,
			})
		}
	}
	return m.rows
}

// Bounds is the area covered by the current rows.
func (m *Model) Bounds() Rect {
	return Rect{X: m.x, Y: m.y, W: m.width, H: float32(len(m.rows)) * m.rowHeight}
}

// Contains reports whether the pointer is over the panel.
func (m *Model) Contains(x, y float32) bool { return m.Bounds().Contains(x, y) }

// Dragging reports whether a slider is being dragged.
func (m *Model) Dragging() bool { return m.drag >= 0 }

// Press handles a button press at (x, y) against the last layout. Folders toggle open
// locally; toggles and slider tracks produce an Event.
func (m *Model) Press(x, y float32) (pipeline.Event, bool) {
	for i, r := range m.rows {
		if !r.Rect.Contains(x, y) {
			continue
		}
		switch r.Kind {
		case Folder:
			m.open[r.Stage] = !r.Open
		case Toggle:
			if !r.Enabled {
				return pipeline.Event{}, false
			}
			v := 1.0
			if r.On {
				v = 0
			}
			return pipeline.Event{Stage: r.Stage, Param: pipeline.EnabledParam, Value: v}, true
		case Slider:
			if !r.Track.Contains(x, y) {
				return pipeline.Event{}, false
			}
			m.drag = i
			m.last = r.Value
			return m.Drag(x)
		}
		return pipeline.Event{}, false
	}
	return pipeline.Event{}, false
}

// Drag moves the active slider to pointer x. It reports an Event only when the snapped
// value changes.
func (m *Model) Drag(x float32) (pipeline.Event, bool) {
	if m.drag < 0 || m.drag >= len(m.rows) {
		return pipeline.Event{}, false
	}
	r := m.rows[m.drag]
	f := float64((x - r.Track.X) / r.Track.W)
	v := r.Param.FromFraction(f)
	if v == m.last {
		return pipeline.Event{}, false
	}
	m.last = v
	return pipeline.Event{Stage: r.Stage, Param: r.Param.Name, Value: v}, true
}

// Release ends a drag.
func (m *Model) Release() { m.drag = -1 }

func format(ps pipeline.ParamSpec, v float64) string {
	switch ps.Type {
	case pipeline.Bool:
		if v != 0 {
			return "on"
		}
		return "off"
	case pipeline.Int:
		return strconv.Itoa(int(v))
	}
	prec := 2
	if ps.Step > 0 {
		prec = max(prec, int(math.Round(-math.Log10(ps.Step))))
	}
	return fmt.Sprintf("%.*f", prec, v)
}
