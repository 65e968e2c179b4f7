package repokit

// Binder produces a domain repo bound to q. Services hold a Binder and bind
// per call so the same repo code runs on the pool or inside a tx
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a plain function to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }
