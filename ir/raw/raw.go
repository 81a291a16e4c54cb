package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// IsZero reports whether the reference is the zero value, i.e. the object
// has not been materialized as an indirect object.
func (r ObjectRef) IsZero() bool { return r.Num == 0 && r.Gen == 0 }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
	IsIndirect() bool
}

// Dictionary represents a PDF dictionary object.
type Dictionary interface {
	Object
	Get(key Name) (Object, bool)
	Set(key Name, value Object)
	Delete(key Name)
	Keys() []Name
	Len() int
}

// Array represents a PDF array object.
type Array interface {
	Object
	Get(index int) (Object, bool)
	Len() int
	Append(obj Object)
	Insert(index int, obj Object)
	Erase(index int)
}

// Stream represents a raw (undecoded) PDF stream.
type Stream interface {
	Object
	Dictionary() Dictionary
	RawData() []byte
	Length() int64
}

// Name represents a PDF name object.
type Name interface {
	Object
	Value() string
}

// String represents a PDF string (literal or hex).
type String interface {
	Object
	Value() []byte
	IsHex() bool
}

// Number represents a PDF numeric value.
type Number interface {
	Object
	Int() int64
	Float() float64
	IsInteger() bool
}

// Boolean represents a PDF boolean.
type Boolean interface {
	Object
	Value() bool
}

// Null represents the PDF null object.
type Null interface{ Object }

// Reference represents an indirect object reference.
type Reference interface {
	Object
	Ref() ObjectRef
}

// Document is the root container for raw PDF objects. It owns the indirect
// object store; components above it only rearrange references between the
// objects it holds.
type Document struct {
	Objects map[ObjectRef]Object
	Trailer Dictionary
	Version string // e.g., "1.7"
}

// NewDocument returns an empty document with an initialized object store.
func NewDocument() *Document {
	return &Document{Objects: make(map[ObjectRef]Object)}
}

// ResolveRef looks up an indirect object by reference.
func (d *Document) ResolveRef(ref ObjectRef) (Object, bool) {
	obj, ok := d.Objects[ref]
	return obj, ok
}

// Resolve chases obj through one level of indirection: a Reference is looked
// up in the object store, anything else is returned as-is.
func (d *Document) Resolve(obj Object) (Object, bool) {
	if ref, ok := obj.(Reference); ok {
		return d.ResolveRef(ref.Ref())
	}
	return obj, obj != nil
}

// Allocate registers obj as a new indirect object at the next free object
// number, generation zero, and returns its reference.
func (d *Document) Allocate(obj Object) ObjectRef {
	if d.Objects == nil {
		d.Objects = make(map[ObjectRef]Object)
	}
	next := 1
	for ref := range d.Objects {
		if ref.Num >= next {
			next = ref.Num + 1
		}
	}
	ref := ObjectRef{Num: next, Gen: 0}
	d.Objects[ref] = obj
	return ref
}

// Catalog resolves the trailer /Root entry to the document catalog.
func (d *Document) Catalog() (Dictionary, bool) {
	if d.Trailer == nil {
		return nil, false
	}
	rootObj, ok := d.Trailer.Get(NameLiteral("Root"))
	if !ok {
		return nil, false
	}
	resolved, ok := d.Resolve(rootObj)
	if !ok {
		return nil, false
	}
	dict, ok := resolved.(Dictionary)
	return dict, ok
}
