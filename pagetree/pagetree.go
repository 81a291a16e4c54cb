// Package pagetree keeps a flattened, randomly indexable view of a
// document's page tree synchronized with the hierarchical /Pages structure
// in the underlying object store.
//
// Three structures have to agree at every observable point: the flat page
// list (handed out by reference to callers), the position index (page
// identity to position), and the /Pages tree itself, which remains the
// durable source of truth. Only the Tree operations write to any of them;
// callers that edit the tree out of band must call Resync before using the
// tree again.
package pagetree

import (
	"fmt"

	"pdflib/ir/raw"
	"pdflib/observability"
)

// Handle pairs a page dictionary with its indirect reference. Ref is the
// page's identity within the document; a zero Ref marks a page that has not
// been materialized as an indirect object yet.
type Handle struct {
	Ref  raw.ObjectRef
	Dict *raw.DictObj
}

// Tree maintains the page-list cache and position index for one open
// document. It is not safe for concurrent use; the caller serializes access.
type Tree struct {
	doc     *raw.Document
	root    *raw.DictObj
	rootRef raw.ObjectRef

	pages  []Handle              // flat page list in logical reading order
	pos    map[raw.ObjectRef]int // page identity -> position; nil until flattened
	pushed bool                  // inherited attributes pushed for the current flattened lifetime

	log observability.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used for debug output.
func WithLogger(l observability.Logger) Option {
	return func(t *Tree) { t.log = l }
}

// New resolves the document's /Pages root and returns a Tree over it. The
// page list and index start empty and are populated on first use.
func New(doc *raw.Document, opts ...Option) (*Tree, error) {
	t := &Tree{doc: doc, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(t)
	}

	catalog, ok := doc.Catalog()
	if !ok {
		return nil, &TreeError{Op: "open page tree", Pos: -1, Err: fmt.Errorf("document has no catalog: %w", ErrDamagedTree)}
	}
	pagesObj, ok := catalog.Get(raw.NameLiteral("Pages"))
	if !ok {
		return nil, &TreeError{Op: "open page tree", Pos: -1, Err: fmt.Errorf("catalog has no /Pages entry: %w", ErrDamagedTree)}
	}
	if ref, isRef := pagesObj.(raw.Reference); isRef {
		t.rootRef = ref.Ref()
	}
	resolved, ok := doc.Resolve(pagesObj)
	if !ok {
		return nil, &TreeError{Op: "open page tree", Ref: t.rootRef, Pos: -1, Err: fmt.Errorf("/Pages reference is dangling: %w", ErrDamagedTree)}
	}
	root, ok := resolved.(*raw.DictObj)
	if !ok {
		return nil, &TreeError{Op: "open page tree", Ref: t.rootRef, Pos: -1, Err: fmt.Errorf("/Pages is not a dictionary: %w", ErrDamagedTree)}
	}
	t.root = root

	// Parent entries written later must reference the root, so a root that
	// is inlined into the catalog gets materialized now.
	if t.rootRef.IsZero() {
		t.rootRef = doc.Allocate(root)
		catalog.Set(raw.NameLiteral("Pages"), raw.RefObj{R: t.rootRef})
	}
	return t, nil
}

// Pages returns the flat page list in logical reading order, populating it
// from the tree on first use. It does not flatten the tree. The returned
// slice stays valid until the next mutation operation; callers re-fetch
// after Insert or Remove.
func (t *Tree) Pages() ([]Handle, error) {
	if t.pages == nil {
		collected := make([]Handle, 0)
		if err := t.collect(t.root, t.rootRef, &collected); err != nil {
			return nil, err
		}
		t.pages = collected
	}
	return t.pages, nil
}

// Len reports the number of pages in the document.
func (t *Tree) Len() (int, error) {
	pages, err := t.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// Resync discards the page-list cache and the position index and rebuilds
// the list immediately. It is the entry point for callers that edited the
// /Pages structure without going through the mutation operations. The
// rebuilt list lives in a fresh slice, so page-list references handed out
// earlier keep the contents they had instead of being mutated underneath
// their holders.
func (t *Tree) Resync() error {
	t.pages = nil
	t.pos = nil
	t.pushed = false
	t.log.Debug("page cache resync")
	_, err := t.Pages()
	return err
}

// collect walks the tree rooted at node and appends leaf pages in document
// order. This is the one place malformed trees are detected: any node whose
// Type is neither /Pages nor /Page fails the walk.
func (t *Tree) collect(node raw.Object, ref raw.ObjectRef, out *[]Handle) error {
	if r, ok := node.(raw.Reference); ok {
		ref = r.Ref()
		resolved, found := t.doc.ResolveRef(ref)
		if !found {
			return &TreeError{Op: "walk page tree", Ref: ref, Pos: len(*out), Err: fmt.Errorf("dangling kid reference: %w", ErrDamagedTree)}
		}
		node = resolved
	}
	dict, ok := node.(*raw.DictObj)
	if !ok {
		return &TreeError{Op: "walk page tree", Ref: ref, Pos: len(*out), Err: fmt.Errorf("node is not a dictionary: %w", ErrDamagedTree)}
	}

	switch typ := nodeType(dict); typ {
	case "Pages":
		kids, err := kidsOf(dict, ref)
		if err != nil {
			return err
		}
		for _, kid := range kids.Items {
			if err := t.collect(kid, raw.ObjectRef{}, out); err != nil {
				return err
			}
		}
		return nil
	case "Page":
		*out = append(*out, Handle{Ref: ref, Dict: dict})
		return nil
	default:
		return &TreeError{Op: "walk page tree", Ref: ref, Pos: len(*out), Err: fmt.Errorf("invalid Type /%s in page tree: %w", typ, ErrDamagedTree)}
	}
}

// flatten pushes inherited attributes down, collapses the tree to a single
// level under the root, and populates the position index. Idempotent: a
// populated index means the work is already done. None of the three
// structures is touched until collection, duplicate detection, and the
// Count check have all succeeded.
func (t *Tree) flatten() error {
	if t.pos != nil {
		return nil
	}

	if !t.pushed {
		pushInheritedAttributes(t.doc, t.root)
		t.pushed = true
	}

	pages, err := t.Pages()
	if err != nil {
		return err
	}
	for i := range pages {
		if pages[i].Ref.IsZero() {
			pages[i].Ref = t.doc.Allocate(pages[i].Dict)
		}
	}

	declared, ok := intKey(t.root, "Count")
	if !ok || declared != int64(len(pages)) {
		return &TreeError{Op: "flatten page tree", Ref: t.rootRef, Pos: -1,
			Err: fmt.Errorf("declared page count %d, found %d pages: %w", declared, len(pages), ErrDamagedTree)}
	}

	idx, err := buildIndex(pages)
	if err != nil {
		return err
	}

	kids := raw.NewArray()
	for _, p := range pages {
		p.Dict.Set(raw.NameLiteral("Parent"), raw.RefObj{R: t.rootRef})
		kids.Append(raw.RefObj{R: p.Ref})
	}
	t.root.Set(raw.NameLiteral("Kids"), kids)
	// Count is unchanged; the check above already pinned it to len(pages).
	t.pos = idx

	t.log.Debug("flattened page tree", observability.Int("pages", len(pages)))
	return nil
}

// buildIndex recomputes the position index from scratch. Registration is
// set-insert-or-fail: one page object linked from two tree positions is an
// authoring error that would silently lose data on later edits.
func buildIndex(pages []Handle) (map[raw.ObjectRef]int, error) {
	idx := make(map[raw.ObjectRef]int, len(pages))
	for i, p := range pages {
		if _, dup := idx[p.Ref]; dup {
			return nil, &TreeError{Op: "flatten page tree", Ref: p.Ref, Pos: i, Err: ErrDuplicatePage}
		}
		idx[p.Ref] = i
	}
	return idx, nil
}

// reindexFrom rewrites index entries for pages[from:] after a splice.
func (t *Tree) reindexFrom(from int) {
	for i := from; i < len(t.pages); i++ {
		t.pos[t.pages[i].Ref] = i
	}
}

// kids returns the root's /Kids array. After flattening this is always the
// single-level array the flattener installed.
func (t *Tree) kids() (*raw.ArrayObj, error) {
	return kidsOf(t.root, t.rootRef)
}

func kidsOf(dict *raw.DictObj, ref raw.ObjectRef) (*raw.ArrayObj, error) {
	obj, ok := dict.Get(raw.NameLiteral("Kids"))
	if !ok {
		return nil, &TreeError{Op: "walk page tree", Ref: ref, Pos: -1, Err: fmt.Errorf("pages node has no /Kids: %w", ErrDamagedTree)}
	}
	arr, ok := obj.(*raw.ArrayObj)
	if !ok {
		return nil, &TreeError{Op: "walk page tree", Ref: ref, Pos: -1, Err: fmt.Errorf("/Kids is not an array: %w", ErrDamagedTree)}
	}
	return arr, nil
}

func nodeType(dict *raw.DictObj) string {
	obj, ok := dict.Get(raw.NameLiteral("Type"))
	if !ok {
		return ""
	}
	name, ok := obj.(raw.NameObj)
	if !ok {
		return ""
	}
	return name.Value()
}

func intKey(dict *raw.DictObj, key string) (int64, bool) {
	obj, ok := dict.Get(raw.NameLiteral(key))
	if !ok {
		return 0, false
	}
	num, ok := obj.(raw.NumberObj)
	if !ok || !num.IsInt {
		return 0, false
	}
	return num.I, true
}
