package model

// Record is one node of a raw bibliographic record: a named element with
// optional text content, attached attributes, and child elements. Records are
// built once by the fetch layer and never mutated afterwards.
type Record struct {
	Name     string            `json:"name"`
	Value    string            `json:"value,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Record         `json:"children,omitempty"`
}

// Child returns the first child element with the given name, or nil.
// Safe to call on a nil receiver, so lookups can be chained.
func (r *Record) Child(name string) *Record {
	if r == nil {
		return nil
	}
	for _, c := range r.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Items returns every child element with the given name, in document order.
func (r *Record) Items(name string) []*Record {
	if r == nil {
		return nil
	}
	var out []*Record
	for _, c := range r.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Has reports whether a child element with the given name exists.
func (r *Record) Has(name string) bool {
	return r.Child(name) != nil
}

// Text returns the text content of the first child with the given name,
// or "" when the child is absent.
func (r *Record) Text(name string) string {
	if c := r.Child(name); c != nil {
		return c.Value
	}
	return ""
}

// Attr returns the named attribute and whether it was present.
func (r *Record) Attr(key string) (string, bool) {
	if r == nil || r.Attrs == nil {
		return "", false
	}
	v, ok := r.Attrs[key]
	return v, ok
}

// AttrIs reports whether the named attribute is present with the given value.
func (r *Record) AttrIs(key, value string) bool {
	v, ok := r.Attr(key)
	return ok && v == value
}
