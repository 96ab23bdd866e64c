package common

// New returns a pointer to v, handy for optional filter fields.
func New[T any](v T) *T {
	return &v
}
