package dom

import "strings"

// Attribute is a single name/value pair.
type Attribute struct {
	Name  string
	Value string
}

// Attributes is an attribute bag with case-insensitive names. Insertion
// order is kept so rendering is deterministic.
type Attributes struct {
	list []Attribute
}

func (a *Attributes) index(name string) int {
	for i, attr := range a.list {
		if strings.EqualFold(attr.Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the value for name and whether it is present.
func (a *Attributes) Get(name string) (string, bool) {
	if i := a.index(name); i >= 0 {
		return a.list[i].Value, true
	}
	return "", false
}

// Value returns the value for name, or "" when absent.
func (a *Attributes) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// Has reports whether name is present.
func (a *Attributes) Has(name string) bool {
	return a.index(name) >= 0
}

// Set adds or overwrites name. An existing entry keeps its position and its
// original spelling.
func (a *Attributes) Set(name, value string) {
	if i := a.index(name); i >= 0 {
		a.list[i].Value = value
		return
	}
	a.list = append(a.list, Attribute{Name: name, Value: value})
}

// Delete removes name and reports whether it was present.
func (a *Attributes) Delete(name string) bool {
	i := a.index(name)
	if i < 0 {
		return false
	}
	a.list = append(a.list[:i:i], a.list[i+1:]...)
	return true
}

// Len returns the number of attributes.
func (a *Attributes) Len() int { return len(a.list) }

// All returns a copy of the attributes in insertion order.
func (a *Attributes) All() []Attribute {
	out := make([]Attribute, len(a.list))
	copy(out, a.list)
	return out
}

// Clone returns an independent copy.
func (a *Attributes) Clone() Attributes {
	return Attributes{list: a.All()}
}

// Map returns the attributes keyed by lower-case name.
func (a *Attributes) Map() map[string]string {
	m := make(map[string]string, len(a.list))
	for _, attr := range a.list {
		m[strings.ToLower(attr.Name)] = attr.Value
	}
	return m
}
