// Package result holds the two-variant outcome type shared by the gateways and
// the combinators that fold many outcomes into one.
package result

// Result is either a value or an error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure. err must be non-nil.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Of builds a Result from the usual (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

func (r Result[T]) IsOk() bool { return r.err == nil }

// Get returns the pair form of r.
func (r Result[T]) Get() (T, error) { return r.value, r.err }

func (r Result[T]) Err() error { return r.err }

// Combine folds results into one all-or-nothing outcome: every value in input
// order, or the first failure with all successes discarded.
func Combine[T any](results []Result[T]) ([]T, error) {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		values = append(values, r.value)
	}
	return values, nil
}

// Collect maps every input through fn and combines the outcomes.
func Collect[R, T any](inputs []R, fn func(R) (T, error)) ([]T, error) {
	results := make([]Result[T], 0, len(inputs))
	for _, in := range inputs {
		results = append(results, Of(fn(in)))
	}
	return Combine(results)
}
