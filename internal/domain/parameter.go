package domain

// Parameter is a named mutable scalar owned by a force model, typically the
// gravitational constant mu or the reference radius ae.
//
// Identity is the pointer: two Parameters carrying the same name and value are
// still distinct, and a model only recognizes the exact instances it was
// constructed with. Equality must never be derived from name or value, which is
// why the fields are unexported and there is no Equals method.
//
// A single writer is expected; readers always observe the latest stored value.
type Parameter struct {
	name  string
	value float64
}

// NewParameter creates a parameter with an initial value.
func NewParameter(name string, value float64) *Parameter {
	return &Parameter{name: name, value: value}
}

// Name returns the descriptive name of the parameter.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the current value of the parameter.
func (p *Parameter) Value() float64 {
	return p.value
}

// SetValue stores a new value. Models backed by this parameter pick it up on
// their next evaluation.
func (p *Parameter) SetValue(v float64) {
	p.value = v
}
