package measurements

import "slices"

// Registry stores named elements under dense ids assigned in insertion order.
// Ids are never reassigned, which lets the filter address per-element state blocks by id.
type Registry[T any] struct {
	ids      map[string]int
	elements []T
	names    []string
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{ids: map[string]int{}}
}

// Insert registers name with the element returned by build, called with the new id.
// If name is already registered, it returns the existing id and false without calling build.
func (r *Registry[T]) Insert(name string, build func(id int) T) (int, bool) {
	if id, ok := r.ids[name]; ok {
		return id, false
	}
	id := len(r.elements)
	r.ids[name] = id
	r.elements = append(r.elements, build(id))
	r.names = append(r.names, name)
	return id, true
}

// IDOf returns the id of name.
func (r *Registry[T]) IDOf(name string) (int, error) {
	id, ok := r.ids[name]
	if !ok {
		return 0, newNotFoundError("element", name)
	}
	return id, nil
}

// NameOf returns the name registered under id.
func (r *Registry[T]) NameOf(id int) (string, error) {
	if id < 0 || id >= len(r.names) {
		return "", newOutOfRangeError("element", id, len(r.names))
	}
	return r.names[id], nil
}

// Contains returns whether name is registered.
func (r *Registry[T]) Contains(name string) bool {
	_, ok := r.ids[name]
	return ok
}

// Get returns the element registered as name.
func (r *Registry[T]) Get(name string) (T, error) {
	id, err := r.IDOf(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.elements[id], nil
}

// At returns the element registered under id.
func (r *Registry[T]) At(id int) (T, error) {
	if id < 0 || id >= len(r.elements) {
		var zero T
		return zero, newOutOfRangeError("element", id, len(r.elements))
	}
	return r.elements[id], nil
}

// Names returns the registered names in insertion order.
func (r *Registry[T]) Names() []string {
	return slices.Clone(r.names)
}

// All returns the registered elements in insertion order.
func (r *Registry[T]) All() []T {
	return slices.Clone(r.elements)
}

// Len returns the number of registered elements.
func (r *Registry[T]) Len() int {
	return len(r.elements)
}
