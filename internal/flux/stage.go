// Package flux turns standardized instrument readings into blank-corrected
// flux results. Each step is a pure function from one table to a new one;
// Pipeline wires them together.
package flux

// Stage is one step of the pipeline. A stage never modifies its input.
type Stage[T any] func(T) (T, error)

// Chain composes stages left to right, stopping at the first error.
func Chain[T any](stages ...Stage[T]) Stage[T] {
	return func(in T) (T, error) {
		var err error
		for _, s := range stages {
			if in, err = s(in); err != nil {
				return in, err
			}
		}
		return in, nil
	}
}
