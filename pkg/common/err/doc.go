// Package err provides the base error type used across errtrace.
//
// Every package reports its own failures (lookup misses, invalid input,
// domain rule violations) as *Error values carrying the package name, a code
// and the operation:
//
//	return err.New("ledger", CodeInsufficientFunds, "withdraw", "balance too low", nil)
//
// Callers match on the code rather than on the message:
//
//	if err.IsCode(e, err.CodeNotFound) {
//	    // handle missing method
//	}
//
// errors.Is also matches a code-only *Error:
//
//	errors.Is(e, &err.Error{Code: err.CodeNotFound})
//
// *Error keeps Unwrap, so it survives being boxed by errtrace.ModifyStack.
package err
