// Package registry maps delegate names to the Go functions that implement
// them.
//
// Each delegate registers a RegisteredChecker: a constructor for its input
// struct and a function with the signature
//
//	func(context.Context, *checker.Invocation, *Input) (*report.Report, error)
//
// The registry also holds the checker manifests found in the checker
// library. ValidateRegistry makes sure every manifest declares exactly the
// inputs of the Go struct it describes, so a check cannot silently pass an
// argument the delegate never reads.
package registry
