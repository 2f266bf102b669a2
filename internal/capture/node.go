package capture

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hazyhaar/domforge/snapshot"
)

// Node is one element as serialised by the in-page capture script. It
// implements snapshot.Element.
type Node struct {
	Tag     string               `json:"tag"`
	Attrs   map[string]string    `json:"attrs"`
	Styles  map[string]string    `json:"computed"`
	Box     snapshot.BoundingBox `json:"box"`
	Content string               `json:"text"`
	HTML    string               `json:"html"`
	Kids    []*Node              `json:"children"`
}

var _ snapshot.Element = (*Node)(nil)

func (n *Node) TagName() string { return n.Tag }
func (n *Node) Attributes() map[string]string { return n.Attrs }
func (n *Node) ComputedStyle(prop string) string { return n.Styles[prop] }
func (n *Node) BoundingBox() snapshot.BoundingBox { return n.Box }
func (n *Node) Text() string { return n.Content }
func (n *Node) InnerHTML() string { return n.HTML }

func (n *Node) Children() []snapshot.Element {
	out := make([]snapshot.Element, 0, len(n.Kids))
	for _, k := range n.Kids {
		if k != nil {
			out = append(out, k)
		}
	}
	return out
}

// Tree is the script's full result.
type Tree struct {
	Title    string            `json:"title"`
	Viewport snapshot.Viewport `json:"viewport"`
	Elements []*Node           `json:"elements"`
	Error    string            `json:"error,omitempty"`
}

// ErrSelector is returned when the page rejects a selector.
var ErrSelector = errors.New("capture: invalid selector")

// ParseTree decodes the script output.
func ParseTree(raw string) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("capture: decode tree: %w", err)
	}
	if t.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrSelector, t.Error)
	}
	return &t, nil
}
