package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"fxdemo/internal/panel"
	"fxdemo/internal/pipeline"
)

const (
	panelWidth  = 320
	panelRow    = 26
	panelMargin = 12
)

// Panel is the on-screen effect control panel, drawn at the top-right corner.
// It emits pipeline Events through send; it never mutates the pipeline itself.
type Panel struct {
	engine  *Engine
	model   *panel.Model
	nodes   []*Node
	pool    []Node
	visible bool
}

// NewPanel returns a visible panel drawn with e.
func NewPanel(e *Engine) *Panel {
	return &Panel{engine: e, model: panel.New(0, panelMargin, panelWidth, panelRow), visible: true}
}

func (p *Panel) SetVisible(v bool) {
	p.visible = v
	if !v {
		p.model.Release()
	}
}

func (p *Panel) Visible() bool { return p.visible }

// Hovered reports whether the pointer belongs to the panel this frame, so camera
// controls should ignore it.
func (p *Panel) Hovered() bool {
	if !p.visible {
		return false
	}
	m := rl.GetMousePosition()
	return p.model.Dragging() || p.model.Contains(m.X, m.Y)
}

// Update lays out stages and handles the mouse. Call once per frame before Draw.
func (p *Panel) Update(stages []pipeline.Stage, send func(pipeline.Event) error) error {
	if !p.visible {
		return nil
	}
	p.model.Move(float32(rl.GetScreenWidth())-panelWidth-panelMargin, panelMargin)
	p.model.Layout(stages)
	m := rl.GetMousePosition()
	var (
		ev pipeline.Event
		ok bool
	)
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		ev, ok = p.model.Press(m.X, m.Y)
	case p.model.Dragging() && rl.IsMouseButtonDown(rl.MouseButtonLeft):
		ev, ok = p.model.Drag(m.X)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		p.model.Release()
	}
	if ok {
		return send(ev)
	}
	return nil
}

func (p *Panel) node() *Node {
	if len(p.nodes) < len(p.pool) {
		n := &p.pool[len(p.nodes)]
		*n = Node{}
		p.nodes = append(p.nodes, n)
		return n
	}
	n := &Node{}
	p.nodes = append(p.nodes, n)
	return n
}

func rect(r panel.Rect) rl.Rectangle { return rl.NewRectangle(r.X, r.Y, r.W, r.H) }

// Draw draws the panel for stages.
func (p *Panel) Draw(stages []pipeline.Stage) {
	if !p.visible {
		return
	}
	rows := p.model.Layout(stages)
	if len(p.pool) < len(rows)+1 {
		p.pool = make([]Node, len(rows)+1)
	}
	p.nodes = p.nodes[:0]

	bg := p.node()
	bg.Type = "panel"
	bg.Bounds = rect(p.model.Bounds())

	for _, r := range rows {
		n := p.node()
		n.Bounds = rect(r.Rect)
		n.Text = r.Text
		switch r.Kind {
		case panel.Folder:
			n.Type = "folder"
			if r.On {
				n.Class = "on"
			}
		case panel.Toggle:
			n.Type = "checkbox"
			n.Checked = r.On
			if !r.Enabled {
				n.Class = "locked"
			}
		case panel.Slider:
			n.Type = "slider"
			n.Fill = r.Fill
			n.Track = rect(r.Track)
		}
	}
	p.engine.Draw(p.nodes)
}
