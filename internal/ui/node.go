package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Node is a single UI element: panel, folder, checkbox, slider or label. It has optional class
// and id for CSS matching, bounds set by the caller, and optional text.
type Node struct {
	Type    string // "panel", "folder", "checkbox", "slider", "label"
	Class   string // e.g. "on" for .on
	ID      string // e.g. "fps" for #fps
	Bounds  rl.Rectangle
	Text    string
	Fill    float32 // slider: filled fraction of the track
	Track   rl.Rectangle
	Checked bool // checkbox
}

// NewNode creates a node with type and optional class, id, and text.
func NewNode(typ, class, id, text string) *Node {
	return &Node{Type: typ, Class: class, ID: id, Text: text}
}
