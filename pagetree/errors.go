package pagetree

import (
	"errors"
	"fmt"

	"pdflib/ir/raw"
)

var (
	// ErrDamagedTree indicates a page tree node whose Type is neither
	// /Pages nor /Page, or a declared Count that contradicts the tree.
	ErrDamagedTree = errors.New("damaged page tree")

	// ErrDuplicatePage indicates that one page object would occupy two
	// positions in the page list.
	ErrDuplicatePage = errors.New("duplicate page reference; this would cause loss of data")

	// ErrNotReferenced indicates a lookup for a page that is not linked
	// into the page tree.
	ErrNotReferenced = errors.New("page object not referenced in page tree")

	// ErrBadPosition indicates an out-of-range insert position.
	ErrBadPosition = errors.New("page position out of range")

	// ErrNotAPage indicates a non-page object passed where a page is
	// required.
	ErrNotAPage = errors.New("object is not a page")
)

// TreeError ties a page-tree failure to the operation that detected it, the
// offending object, and the page position involved.
type TreeError struct {
	Op  string
	Ref raw.ObjectRef
	Pos int // page position, numbered from zero; -1 when none applies
	Err error
}

func (e *TreeError) Error() string {
	msg := e.Op
	if e.Pos >= 0 {
		msg += fmt.Sprintf(": page %d (numbered from zero)", e.Pos)
	}
	if !e.Ref.IsZero() {
		msg += fmt.Sprintf(": object %s", e.Ref)
	}
	return msg + ": " + e.Err.Error()
}

func (e *TreeError) Unwrap() error { return e.Err }
