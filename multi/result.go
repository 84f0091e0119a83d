package multi

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// FutureResult records the outcome of one unit of work in a batch. Exactly
// one of Result/Err is populated: Err is nil on success, and Result is the
// zero value on failure.
//
// Type parameters:
//   - T: The unit's input type
//   - R: The unit's result type
//
// Fields:
//   - Result: The unit's return value. Zero when Err is non-nil.
//   - Err: The captured failure, nil on success. For process-backed batches
//     this is a *pool.RemoteError; only the message survives the boundary.
//   - Input: The unit's original input, for correlating results back to
//     inputs in completion order. Nil when the batch ran WithoutInputs,
//     which avoids retaining large inputs in memory after completion.
type FutureResult[T any, R any] struct {
	Result R
	Err    error
	Input  *T
}

// Failed reports whether the unit failed.
func (fr FutureResult[T, R]) Failed() bool {
	return fr.Err != nil
}

// CheckResults returns an error aggregating every failed unit in results,
// or nil when none failed. The returned error is a *multierror.Error whose
// Errors field lists each unit's failure in the completion order the
// records were produced. It does not mutate results and may be called any
// time after a batch returns.
func CheckResults[T any, R any](results []FutureResult[T, R]) error {
	var group *multierror.Error
	for _, r := range results {
		if r.Err != nil {
			group = multierror.Append(group, r.Err)
		}
	}
	if group == nil {
		return nil
	}
	group.ErrorFormat = listFailures
	return group
}

func listFailures(errs []error) string {
	if len(errs) == 1 {
		return fmt.Sprintf("1 unit failed:\n\t* %s", errs[0])
	}

	out := fmt.Sprintf("%d units failed:", len(errs))
	for _, err := range errs {
		out += fmt.Sprintf("\n\t* %s", err)
	}
	return out
}
