package css

import (
	"iter"

	"github.com/cespare/xxhash/v2"
	"github.com/elliotchance/orderedmap/v3"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

// Declarations keep properties in first-insertion order. Setting an existing
// property replaces its value in place.
type Declarations struct {
	m *orderedmap.OrderedMap[string, string]
}

func NewDeclarations() *Declarations {
	return &Declarations{m: orderedmap.NewOrderedMap[string, string]()}
}

func (d *Declarations) Set(property, value string) {
	d.m.Set(property, value)
}

func (d *Declarations) Get(property string) (string, bool) {
	return d.m.Get(property)
}

func (d *Declarations) Delete(property string) bool {
	return d.m.Delete(property)
}

func (d *Declarations) Len() int {
	if d == nil {
		return 0
	}
	return d.m.Len()
}

// All iterates declarations in order.
func (d *Declarations) All() iter.Seq2[string, string] {
	return d.m.AllFromFront()
}

// Slice returns declarations in order.
func (d *Declarations) Slice() []Declaration {
	out := make([]Declaration, 0, d.Len())
	for k, v := range d.All() {
		out = append(out, Declaration{Property: k, Value: v})
	}
	return out
}

// Merge copies all declarations of other into d.
func (d *Declarations) Merge(other *Declarations) {
	for k, v := range other.All() {
		d.m.Set(k, v)
	}
}

// Equal reports whether both hold the same declarations in the same order.
func (d *Declarations) Equal(other *Declarations) bool {
	if d.Len() != other.Len() {
		return false
	}
	a, b := d.Slice(), other.Slice()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DeclarationsHash returns a hash of declarations which depends on both
// content and order.
func DeclarationsHash(d *Declarations) uint64 {
	h := xxhash.New()
	for k, v := range d.All() {
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(v)
		_, _ = h.Write([]byte{0xff})
	}
	return h.Sum64()
}
