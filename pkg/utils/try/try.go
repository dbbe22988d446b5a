// Package try shortens handling of (value, error) pairs, mainly in tests.
package try

// something have method `Fatal`.
//
// For example in standard libraries: *testing.T, log.Logger
type Fataler interface {
	Fatal(...any)
}

// Result wraps a pair of (T, error).
//
// When the error is nil, the Result is "ok" and its value is valid.
type Result[T any] struct {
	value T
	err   error
}

// To wraps a pair returned from a function, like try.To(strconv.Atoi(s)).
func To[T any](value T, err error) Result[T] {
	if err != nil {
		return Result[T]{err: err}
	}
	return Result[T]{value: value}
}

// Get unwraps the Result. When it is not ok, the value is zero.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// OrFatal returns the value when the Result is ok.
//
// Otherwise, it calls ftl.Fatal with the error.
// If ftl has "Helper()" method (like *testing.T), that is called before `Fatal`.
func (r Result[T]) OrFatal(ftl Fataler) T {
	if r.err == nil {
		return r.value
	}
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(r.err)
	return *new(T)
}

// OrDefault returns the value when the Result is ok, or d when not.
func (r Result[T]) OrDefault(d T) T {
	if r.err != nil {
		return d
	}
	return r.value
}
