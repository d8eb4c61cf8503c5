// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
//
// Two forms are accepted:
//
//	gradegrid [options] [-check FILE] [SUBMISSION...]
//	gradegrid verify-solution [options] -config FILE
package cli
