package pagetree

import (
	"testing"

	"pdflib/ir/raw"
)

func letterBox() *raw.ArrayObj {
	return raw.NewArray(raw.NumberInt(0), raw.NumberInt(0), raw.NumberInt(612), raw.NumberInt(792))
}

func a4Box() *raw.ArrayObj {
	return raw.NewArray(raw.NumberInt(0), raw.NumberInt(0), raw.NumberInt(595), raw.NumberInt(842))
}

func TestPushInheritedAttributes(t *testing.T) {
	doc := raw.NewDocument()

	plain := newPage()
	plainRef := doc.Allocate(plain)

	rotated := newPage()
	rotated.Set(raw.NameLiteral("Rotate"), raw.NumberInt(180))
	rotatedRef := doc.Allocate(rotated)

	inherited := letterBox()
	override := a4Box()

	inner := raw.Dict()
	inner.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	inner.Set(raw.NameLiteral("MediaBox"), override)
	inner.Set(raw.NameLiteral("Kids"), raw.NewArray(raw.RefObj{R: plainRef}, raw.RefObj{R: rotatedRef}))
	inner.Set(raw.NameLiteral("Count"), raw.NumberInt(2))
	innerRef := doc.Allocate(inner)

	root := raw.Dict()
	root.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	root.Set(raw.NameLiteral("MediaBox"), inherited)
	root.Set(raw.NameLiteral("Rotate"), raw.NumberInt(90))
	root.Set(raw.NameLiteral("Kids"), raw.NewArray(raw.RefObj{R: innerRef}))
	root.Set(raw.NameLiteral("Count"), raw.NumberInt(2))

	pushInheritedAttributes(doc, root)

	// Closer ancestors win: the inner MediaBox shadows the root's.
	mb, ok := plain.Get(raw.NameLiteral("MediaBox"))
	if !ok {
		t.Fatal("plain page got no MediaBox")
	}
	if mb != raw.Object(override) {
		t.Error("plain page inherited the wrong MediaBox")
	}
	rot, ok := plain.Get(raw.NameLiteral("Rotate"))
	if !ok || rot.(raw.NumberObj).I != 90 {
		t.Errorf("plain page Rotate = %v, want 90", rot)
	}

	// A page's own entry wins over anything inherited.
	rot, _ = rotated.Get(raw.NameLiteral("Rotate"))
	if rot.(raw.NumberObj).I != 180 {
		t.Errorf("rotated page lost its own Rotate: %v", rot)
	}

	// Intermediates no longer carry inheritable attributes.
	if _, ok := root.Get(raw.NameLiteral("MediaBox")); ok {
		t.Error("root still carries MediaBox")
	}
	if _, ok := root.Get(raw.NameLiteral("Rotate")); ok {
		t.Error("root still carries Rotate")
	}
	if _, ok := inner.Get(raw.NameLiteral("MediaBox")); ok {
		t.Error("inner node still carries MediaBox")
	}
}

func TestPushInheritedSiblingIsolation(t *testing.T) {
	doc := raw.NewDocument()

	left := newPage()
	leftRef := doc.Allocate(left)
	right := newPage()
	rightRef := doc.Allocate(right)

	rootBox := letterBox()
	leftBox := a4Box()

	leftNode := raw.Dict()
	leftNode.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	leftNode.Set(raw.NameLiteral("MediaBox"), leftBox)
	leftNode.Set(raw.NameLiteral("Kids"), raw.NewArray(raw.RefObj{R: leftRef}))
	leftNode.Set(raw.NameLiteral("Count"), raw.NumberInt(1))
	leftNodeRef := doc.Allocate(leftNode)

	root := raw.Dict()
	root.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	root.Set(raw.NameLiteral("MediaBox"), rootBox)
	root.Set(raw.NameLiteral("Kids"), raw.NewArray(raw.RefObj{R: leftNodeRef}, raw.RefObj{R: rightRef}))
	root.Set(raw.NameLiteral("Count"), raw.NumberInt(2))

	pushInheritedAttributes(doc, root)

	mb, _ := left.Get(raw.NameLiteral("MediaBox"))
	if mb != raw.Object(leftBox) {
		t.Error("left page did not get its subtree's MediaBox")
	}
	mb, _ = right.Get(raw.NameLiteral("MediaBox"))
	if mb != raw.Object(rootBox) {
		t.Error("right page did not get the root MediaBox")
	}
}

// Attributes must survive the whole flatten: once intermediate nodes are
// discarded, the pages carry everything themselves.
func TestFlattenPreservesInheritedAttributes(t *testing.T) {
	doc, refs := buildNestedDocument()
	rootObj, _ := doc.Catalog()
	pagesRef, _ := rootObj.Get(raw.NameLiteral("Pages"))
	pagesNode, _ := doc.ResolveRef(pagesRef.(raw.RefObj).R)
	pagesNode.(*raw.DictObj).Set(raw.NameLiteral("MediaBox"), letterBox())

	tr := newTree(t, doc)
	if err := tr.flatten(); err != nil {
		t.Fatalf("flatten failed: %v", err)
	}

	for i, ref := range refs {
		pageObj, _ := doc.ResolveRef(ref)
		if _, ok := pageObj.(*raw.DictObj).Get(raw.NameLiteral("MediaBox")); !ok {
			t.Errorf("page %d lost its inherited MediaBox", i)
		}
	}
	if _, ok := tr.root.Get(raw.NameLiteral("MediaBox")); ok {
		t.Error("flattened root still carries MediaBox")
	}
}
