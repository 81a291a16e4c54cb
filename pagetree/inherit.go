package pagetree

import "pdflib/ir/raw"

// Attributes an intermediate pages node may carry on behalf of its
// descendants (PDF 32000-1 table 29).
var inheritableKeys = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// pushInheritedAttributes copies inheritable attributes from intermediate
// nodes down onto leaf pages and removes them from the intermediates. A
// page's own entry wins over an inherited one. This runs before flattening:
// once the intermediates are gone, any attribute still living on one would
// be lost.
//
// Nodes the walk cannot interpret are skipped; the flattening walk is the
// place structural damage gets reported.
func pushInheritedAttributes(doc *raw.Document, root *raw.DictObj) {
	pushInherited(doc, root, nil)
}

func pushInherited(doc *raw.Document, node raw.Object, inherited map[string]raw.Object) {
	resolved, ok := doc.Resolve(node)
	if !ok {
		return
	}
	dict, ok := resolved.(*raw.DictObj)
	if !ok {
		return
	}

	switch nodeType(dict) {
	case "Pages":
		down := inherited
		copied := false
		for _, key := range inheritableKeys {
			val, has := dict.Get(raw.NameLiteral(key))
			if !has {
				continue
			}
			if !copied {
				// copy-on-write so siblings keep the parent's view
				down = make(map[string]raw.Object, len(inherited)+1)
				for k, v := range inherited {
					down[k] = v
				}
				copied = true
			}
			down[key] = val
			dict.Delete(raw.NameLiteral(key))
		}
		kidsObj, has := dict.Get(raw.NameLiteral("Kids"))
		if !has {
			return
		}
		kids, isArr := kidsObj.(*raw.ArrayObj)
		if !isArr {
			return
		}
		for _, kid := range kids.Items {
			pushInherited(doc, kid, down)
		}
	case "Page":
		for _, key := range inheritableKeys {
			val, has := inherited[key]
			if !has {
				continue
			}
			if _, own := dict.Get(raw.NameLiteral(key)); !own {
				dict.Set(raw.NameLiteral(key), val)
			}
		}
	}
}
