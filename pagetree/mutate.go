package pagetree

// The mutation and lookup operations below are the only writers of the page
// tree, the page-list cache, and the position index. Each one leaves all
// three consistent on return; validation happens before the first write, so
// a failed call changes nothing.

import (
	"pdflib/ir/raw"
	"pdflib/observability"
)

// Find returns the page's current position in the flat list, flattening the
// tree first if needed. A page that was never inserted, or was already
// removed, fails with ErrNotReferenced.
func (t *Tree) Find(page Handle) (int, error) {
	if err := t.flatten(); err != nil {
		return 0, err
	}
	pos, ok := t.pos[page.Ref]
	if !ok {
		return 0, &TreeError{Op: "find page", Ref: page.Ref, Pos: -1, Err: ErrNotReferenced}
	}
	return pos, nil
}

// Insert splices page into the document at position pos; pos 0 prepends and
// pos == Len() appends. A page that is not yet an indirect object is
// allocated in the object store; the returned handle carries the final
// reference.
func (t *Tree) Insert(page Handle, pos int) (Handle, error) {
	if err := t.flatten(); err != nil {
		return Handle{}, err
	}
	if err := assertPage("insert page", page); err != nil {
		return Handle{}, err
	}
	if pos < 0 || pos > len(t.pages) {
		return Handle{}, &TreeError{Op: "insert page", Ref: page.Ref, Pos: pos, Err: ErrBadPosition}
	}
	if !page.Ref.IsZero() {
		if _, dup := t.pos[page.Ref]; dup {
			return Handle{}, &TreeError{Op: "insert page", Ref: page.Ref, Pos: pos, Err: ErrDuplicatePage}
		}
	} else {
		page.Ref = t.doc.Allocate(page.Dict)
		t.log.Debug("materialized page as indirect object", observability.String("ref", page.Ref.String()))
	}

	kids, err := t.kids()
	if err != nil {
		return Handle{}, err
	}
	page.Dict.Set(raw.NameLiteral("Parent"), raw.RefObj{R: t.rootRef})
	kids.Insert(pos, raw.RefObj{R: page.Ref})
	t.root.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(kids.Len())))

	t.pages = append(t.pages, Handle{})
	copy(t.pages[pos+1:], t.pages[pos:])
	t.pages[pos] = page
	t.reindexFrom(pos)

	t.log.Debug("inserted page",
		observability.String("ref", page.Ref.String()),
		observability.Int("pos", pos),
		observability.Int("pages", len(t.pages)))
	return page, nil
}

// Remove unlinks page from the tree and the flat list. The page object
// itself stays in the object store; only its tree membership ends.
func (t *Tree) Remove(page Handle) error {
	pos, err := t.Find(page) // also ensures a flattened tree
	if err != nil {
		return err
	}

	kids, err := t.kids()
	if err != nil {
		return err
	}
	kids.Erase(pos)
	t.root.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(kids.Len())))

	t.pages = append(t.pages[:pos], t.pages[pos+1:]...)
	delete(t.pos, page.Ref)
	t.reindexFrom(pos)

	t.log.Debug("removed page",
		observability.String("ref", page.Ref.String()),
		observability.Int("pos", pos),
		observability.Int("pages", len(t.pages)))
	return nil
}

// Add appends page to the document, or prepends it when first is set.
func (t *Tree) Add(page Handle, first bool) (Handle, error) {
	pages, err := t.Pages()
	if err != nil {
		return Handle{}, err
	}
	if first {
		return t.Insert(page, 0)
	}
	return t.Insert(page, len(pages))
}

// AddAt inserts page next to ref: before it when before is set, after it
// otherwise. ref must already be resident in the tree.
func (t *Tree) AddAt(page Handle, before bool, ref Handle) (Handle, error) {
	pos, err := t.Find(ref)
	if err != nil {
		return Handle{}, err
	}
	if !before {
		pos++
	}
	return t.Insert(page, pos)
}

// assertPage checks the leaf-page predicate: a dictionary whose Type is
// /Page.
func assertPage(op string, page Handle) error {
	if page.Dict == nil || nodeType(page.Dict) != "Page" {
		return &TreeError{Op: op, Ref: page.Ref, Pos: -1, Err: ErrNotAPage}
	}
	return nil
}
