package types

// Patch is a single field of a partial update: either unchanged or changed to a value
type Patch[T any] struct {
	changed bool
	value   T
}

// Unchanged returns a patch that leaves the field as it is
func Unchanged[T any]() Patch[T] {
	return Patch[T]{}
}

// Changed returns a patch that sets the field to v
func Changed[T any](v T) Patch[T] {
	return Patch[T]{changed: true, value: v}
}

// IsChanged reports whether the field was modified
func (p Patch[T]) IsChanged() bool {
	return p.changed
}

// Value returns the new value. It is the zero value for unchanged fields.
func (p Patch[T]) Value() T {
	return p.value
}

// Get returns the new value and whether the field was modified
func (p Patch[T]) Get() (T, bool) {
	return p.value, p.changed
}
