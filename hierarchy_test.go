package psd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layervault/itsypsd/internal/psdtest"
)

// exampleDocument mirrors the layout of a typical mockup: two versions in
// folders, one nested folder and a loose background.
func exampleDocument(t *testing.T) *Document {
	t.Helper()

	d := psdtest.New(900, 600)
	d.Layers = []psdtest.Layer{
		psdtest.Pixel("Background", 0, 0, 600, 900, nil),
		psdtest.GroupEnd(),
		psdtest.Pixel("Matte", 100, 100, 200, 300, nil),
		psdtest.GroupEnd(),
		psdtest.Pixel("Logo_Glyph", 210, 379, 389, 521, nil),
		psdtest.Pixel("empty layer", 0, 0, 0, 0, nil),
		psdtest.Group("Logo"),
		psdtest.Group("Version A"),
		psdtest.GroupEnd(),
		psdtest.Pixel("Title", 50, 450, 150, 550, nil),
		psdtest.Group("Version B"),
	}

	doc, err := Decode(d.Bytes())
	require.NoError(t, err)
	return doc
}

func TestTree(t *testing.T) {
	tree := exampleDocument(t).Tree()
	require.NotNil(t, tree)

	hash := tree.ToHash()
	assert.Contains(t, hash, "children")

	children, ok := hash["children"].([]map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 3, len(children))

	names := []string{}
	for _, c := range tree.Children {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Version B", "Version A", "Background"}, names); diff != "" {
		t.Errorf("top level mismatch (-want +got):\n%s", diff)
	}
}

func TestAncestry(t *testing.T) {
	tree := exampleDocument(t).Tree()

	assert.True(t, tree.IsRoot())
	assert.Equal(t, tree, tree.Root())
	assert.Equal(t, tree, tree.Children[len(tree.Children)-1].Root())

	// Version B, Title, Version A, Logo, Logo_Glyph, empty layer, Matte, Background
	assert.Equal(t, 8, len(tree.Descendants()))
	assert.Equal(t, 5, len(tree.DescendantLayers()))
	assert.Equal(t, 3, len(tree.DescendantGroups()))

	assert.True(t, tree.HasChildren())
	assert.False(t, tree.DescendantLayers()[0].HasChildren())

	assert.Equal(t, 0, tree.Depth())
	assert.Equal(t, 1, tree.Children[0].Depth())

	glyph := tree.ChildrenAtPath("Version A/Logo/Logo_Glyph")
	require.Len(t, glyph, 1)
	assert.Equal(t, 3, glyph[0].Depth())
	assert.Equal(t, "Version A/Logo/Logo_Glyph", glyph[0].Path())
	assert.Equal(t, []string{"Version A", "Logo", "Logo_Glyph"}, glyph[0].PathParts())
	require.NotNil(t, glyph[0].Layer)
	assert.Equal(t, "Logo_Glyph", glyph[0].Layer.Name())
	assert.Equal(t, int32(379), glyph[0].Left)
}

func TestSearching(t *testing.T) {
	tree := exampleDocument(t).Tree()

	nodes := tree.ChildrenAtPath("Version A/Matte")
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeTypeLayer, nodes[0].Type)

	assert.Len(t, tree.ChildrenAtPath("/Version A/Matte"), 1)
	assert.Len(t, tree.ChildrenAtPath("NOPE"), 0)
	assert.Len(t, tree.ChildrenAtPath(""), 0)
}

func TestGroupDimensions(t *testing.T) {
	tree := exampleDocument(t).Tree()

	empty := tree.ChildrenAtPath("Version A/Logo/empty layer")
	require.Len(t, empty, 1)
	assert.True(t, empty[0].IsEmpty())

	logo := tree.ChildrenAtPath("Version A/Logo")[0]
	assert.Equal(t, int32(142), logo.Width())
	assert.Equal(t, int32(179), logo.Height())
	assert.Equal(t, int32(379), logo.Left)
	assert.Equal(t, int32(210), logo.Top)

	versionA := tree.ChildrenAtPath("Version A")[0]
	assert.Equal(t, int32(100), versionA.Left)
	assert.Equal(t, int32(100), versionA.Top)
	assert.Equal(t, int32(521), versionA.Right)
	assert.Equal(t, int32(389), versionA.Bottom)

	assert.Equal(t, int32(900), tree.Width())
	assert.Equal(t, int32(600), tree.Height())
}

func TestRepeatedGroupNames(t *testing.T) {
	doc := &Document{Width: 1, Height: 1, Layers: []Layer{
		{NamePath: []string{"G", "a"}},
		{NamePath: []string{"b"}},
		{NamePath: []string{"G", "c"}},
		{NamePath: []string{"G", "d"}},
	}}

	tree := doc.Tree()
	require.Len(t, tree.Children, 3)
	assert.Len(t, tree.Children[0].Children, 1)
	assert.Len(t, tree.Children[2].Children, 2)
	assert.Len(t, tree.ChildrenAtPath("G"), 2)
}

func TestTreeKeepsFolderDividers(t *testing.T) {
	hidden := psdtest.Group("Hidden folder")
	hidden.Flags |= 0x02
	hidden.Opacity = 128

	d := psdtest.New(4, 4)
	d.Layers = []psdtest.Layer{
		psdtest.GroupEnd(),
		psdtest.Pixel("b", 0, 0, 1, 1, nil),
		psdtest.Group("G"),
		psdtest.GroupEnd(),
		psdtest.Pixel("a", 0, 0, 1, 1, nil),
		psdtest.Group("G"),
		psdtest.GroupEnd(),
		hidden,
	}

	doc, err := Decode(d.Bytes())
	require.NoError(t, err)
	tree := doc.Tree()

	names := []string{}
	for _, c := range tree.Children {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Hidden folder", "G", "G"}, names); diff != "" {
		t.Errorf("top level mismatch (-want +got):\n%s", diff)
	}

	empty := tree.Children[0]
	assert.Equal(t, NodeTypeGroup, empty.Type)
	assert.False(t, empty.HasChildren())
	assert.False(t, empty.Visible)
	assert.Equal(t, uint8(128), empty.Opacity)
	assert.Equal(t, "pass_through", empty.BlendMode)

	require.Len(t, tree.Children[1].Children, 1)
	assert.Equal(t, "a", tree.Children[1].Children[0].Name)
	require.Len(t, tree.Children[2].Children, 1)
	assert.Equal(t, "b", tree.Children[2].Children[0].Name)
}

func TestTreeLayerAboveCanvas(t *testing.T) {
	d := psdtest.New(2, 2)
	d.Layers = []psdtest.Layer{
		psdtest.GroupEnd(),
		psdtest.Pixel("Above", 0xFFFFFFFE, 0, 2, 2, nil),
		psdtest.Group("Folder"),
	}

	doc, err := Decode(d.Bytes())
	require.NoError(t, err)

	folder := doc.Tree().ChildrenAtPath("Folder")
	require.Len(t, folder, 1)
	assert.Equal(t, int32(-2), folder[0].Top)
	assert.Equal(t, int32(2), folder[0].Bottom)
	assert.Equal(t, int32(4), folder[0].Height())
}
