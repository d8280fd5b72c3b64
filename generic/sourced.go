package generic

// =============================================================================
// SOURCED - A value tagged with where it came from
// =============================================================================

// Source records whether a figure was reported by the backend or computed locally.
type Source string

const (
	SourceComputed Source = "computed"
	SourceBackend  Source = "backend"
)

// Sourced carries a value plus its origin. A backend-reported zero is still
// FromBackend; presence is never inferred from the value itself.
type Sourced[T any] struct {
	Value  T
	Source Source
}

func FromBackend[T any](v T) Sourced[T] { return Sourced[T]{Value: v, Source: SourceBackend} }
func Computed[T any](v T) Sourced[T]    { return Sourced[T]{Value: v, Source: SourceComputed} }

func (s Sourced[T]) IsBackend() bool { return s.Source == SourceBackend }

// Prefer returns FromBackend(*reported) when reported is non-nil, otherwise
// Computed(compute()). compute is only called when needed.
func Prefer[T any](reported *T, compute func() T) Sourced[T] {
	if reported != nil {
		return FromBackend(*reported)
	}
	return Computed(compute())
}
