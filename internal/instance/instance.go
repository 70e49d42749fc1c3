package instance

import "fmt"

type AttrKind uint8

const (
	KindNumeric AttrKind = iota
	KindNominal
)

// Attribute describes a single input attribute of a stream.
type Attribute struct {
	Name string
	Kind AttrKind
}

// Header describes the shape of a stream: its input attributes and the
// number of class labels. The class value is kept outside the attribute
// list.
type Header struct {
	Attrs      []Attribute
	NumClasses int
}

func NewHeader(attrs []Attribute, numClasses int) *Header {
	return &Header{Attrs: attrs, NumClasses: numClasses}
}

// NumericHeader builds a header of n numeric attributes. Convenient for
// generated streams.
func NumericHeader(n, numClasses int) *Header {
	attrs := make([]Attribute, n)
	for i := range attrs {
		attrs[i] = Attribute{Name: fmt.Sprintf("att%d", i+1), Kind: KindNumeric}
	}
	return NewHeader(attrs, numClasses)
}

func (h *Header) NumAttributes() int {
	return len(h.Attrs)
}

func (h *Header) IsNominal(idx int) bool {
	return h.Attrs[idx].Kind == KindNominal
}

// Instance is a single labeled sample. Instances are immutable after
// creation and are shared by pointer between the stream, the STM and the
// LTM; pointer identity is what callers compare to detect "same instance".
type Instance struct {
	Values []float64
	Class  int
}

func New(values []float64, class int) *Instance {
	return &Instance{Values: values, Class: class}
}

func (in *Instance) Value(idx int) float64 {
	return in.Values[idx]
}

func (in *Instance) NumAttributes() int {
	return len(in.Values)
}
