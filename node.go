package psd

import (
	"strings"
)

// Node types
const (
	NodeTypeRoot  = "root"
	NodeTypeGroup = "group"
	NodeTypeLayer = "layer"
)

// Node represents a node in the layer tree
type Node struct {
	Type      string
	Name      string
	Layer     *Layer
	Parent    *Node
	Children  []*Node
	Visible   bool
	Opacity   uint8
	BlendMode string
	Left      int32
	Top       int32
	Right     int32
	Bottom    int32
}

// Tree builds the folder tree of a decoded document. Every folder divider
// becomes a group node, including folders that hold no drawable layer.
// Documents assembled by hand carry no divider records; their layers are
// grouped by name path instead, with consecutive layers sharing a folder
// name landing in the same group.
func (d *Document) Tree() *Node {
	root := &Node{
		Type:    NodeTypeRoot,
		Name:    "Root",
		Right:   int32(d.Width),
		Bottom:  int32(d.Height),
		Visible: true,
		Opacity: 255,
	}

	if d.outline != nil {
		d.replayOutline(root)
	} else {
		for i := range d.Layers {
			layer := &d.Layers[i]
			parent := root
			for _, name := range layer.NamePath[:len(layer.NamePath)-1] {
				parent = parent.group(name)
			}
			parent.addLayer(layer)
		}
	}

	root.UpdateDimensions()
	return root
}

func (d *Document) replayOutline(root *Node) {
	current := root
	for _, e := range d.outline {
		switch e.kind {
		case outlineOpen:
			g := &Node{
				Type:      NodeTypeGroup,
				Name:      e.name,
				Parent:    current,
				Visible:   e.flags&0x02 == 0,
				Opacity:   e.opacity,
				BlendMode: blendModeName(e.blendModeKey),
			}
			current.Children = append(current.Children, g)
			current = g
		case outlineClose:
			if current.Parent != nil {
				current = current.Parent
			}
		case outlineLayer:
			current.addLayer(&d.Layers[e.layer])
		}
	}
}

func (n *Node) addLayer(layer *Layer) {
	box := layer.Bounds()
	n.Children = append(n.Children, &Node{
		Type:      NodeTypeLayer,
		Name:      layer.Name(),
		Layer:     layer,
		Parent:    n,
		Visible:   layer.Visible(),
		Opacity:   layer.Opacity,
		BlendMode: blendModeName(layer.BlendModeKey),
		Left:      int32(box.Min.X),
		Top:       int32(box.Min.Y),
		Right:     int32(box.Max.X),
		Bottom:    int32(box.Max.Y),
	})
}

// group returns the trailing child group called name, creating it if the
// last child is anything else.
func (n *Node) group(name string) *Node {
	if k := len(n.Children); k > 0 {
		last := n.Children[k-1]
		if last.Type == NodeTypeGroup && last.Name == name {
			return last
		}
	}
	g := &Node{
		Type:    NodeTypeGroup,
		Name:    name,
		Parent:  n,
		Visible: true,
		Opacity: 255,
	}
	n.Children = append(n.Children, g)
	return g
}

// Root returns the root node of the tree
func (n *Node) Root() *Node {
	current := n
	for current.Parent != nil {
		current = current.Parent
	}
	return current
}

// IsRoot returns whether this is the root node
func (n *Node) IsRoot() bool {
	return n.Type == NodeTypeRoot
}

// HasChildren returns whether this node has children
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Descendants returns all descendant nodes (not including this node)
func (n *Node) Descendants() []*Node {
	var result []*Node
	for _, child := range n.Children {
		result = append(result, child)
		result = append(result, child.Descendants()...)
	}
	return result
}

// DescendantLayers returns all descendant layer nodes
func (n *Node) DescendantLayers() []*Node {
	return n.descendantsOfType(NodeTypeLayer)
}

// DescendantGroups returns all descendant group nodes
func (n *Node) DescendantGroups() []*Node {
	return n.descendantsOfType(NodeTypeGroup)
}

func (n *Node) descendantsOfType(typ string) []*Node {
	var result []*Node
	for _, node := range n.Descendants() {
		if node.Type == typ {
			result = append(result, node)
		}
	}
	return result
}

// Depth returns the depth of this node in the tree (root is 0)
func (n *Node) Depth() int {
	depth := 0
	for current := n; current.Parent != nil; current = current.Parent {
		depth++
	}
	return depth
}

// PathParts returns the names from the root's child down to this node
func (n *Node) PathParts() []string {
	parts := []string{}
	for current := n; current.Parent != nil; current = current.Parent {
		parts = append([]string{current.Name}, parts...)
	}
	return parts
}

// Path returns the "/"-joined path to this node
func (n *Node) Path() string {
	return strings.Join(n.PathParts(), "/")
}

// ChildrenAtPath finds nodes at the given "/"-separated path
func (n *Node) ChildrenAtPath(path string) []*Node {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return []*Node{}
	}
	return n.findAtPath(strings.Split(path, "/"))
}

func (n *Node) findAtPath(parts []string) []*Node {
	if len(parts) == 0 {
		return []*Node{n}
	}

	results := []*Node{}
	for _, child := range n.Children {
		if child.Name == parts[0] {
			results = append(results, child.findAtPath(parts[1:])...)
		}
	}
	return results
}

// ToHash converts the node tree to a map structure
func (n *Node) ToHash() map[string]interface{} {
	result := map[string]interface{}{
		"type":          n.Type,
		"name":          n.Name,
		"visible":       n.Visible,
		"opacity":       float64(n.Opacity) / 255.0,
		"blending_mode": n.BlendMode,
		"left":          n.Left,
		"top":           n.Top,
		"right":         n.Right,
		"bottom":        n.Bottom,
		"width":         n.Width(),
		"height":        n.Height(),
	}

	if len(n.Children) > 0 {
		children := make([]map[string]interface{}, len(n.Children))
		for i, child := range n.Children {
			children[i] = child.ToHash()
		}
		result["children"] = children
	}

	return result
}

// Width returns the width of the node
func (n *Node) Width() int32 {
	return n.Right - n.Left
}

// Height returns the height of the node
func (n *Node) Height() int32 {
	return n.Bottom - n.Top
}

// IsEmpty returns whether this node is empty (zero size)
func (n *Node) IsEmpty() bool {
	return n.Width() <= 0 || n.Height() <= 0
}

// UpdateDimensions recursively updates the dimensions of group nodes based on their children
func (n *Node) UpdateDimensions() {
	if n.Type == NodeTypeLayer {
		return
	}

	for _, child := range n.Children {
		child.UpdateDimensions()
	}

	// Root node dimensions are the canvas
	if n.Type == NodeTypeRoot {
		return
	}

	first := true
	n.Left, n.Top, n.Right, n.Bottom = 0, 0, 0, 0
	for _, child := range n.Children {
		if child.IsEmpty() {
			continue
		}
		if first {
			n.Left, n.Top, n.Right, n.Bottom = child.Left, child.Top, child.Right, child.Bottom
			first = false
			continue
		}
		n.Left = min(n.Left, child.Left)
		n.Top = min(n.Top, child.Top)
		n.Right = max(n.Right, child.Right)
		n.Bottom = max(n.Bottom, child.Bottom)
	}
}
