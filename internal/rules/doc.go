// Package rules implements ordered accept/reject rule tables.
//
// A table is a list of rules, each pairing a verdict with a glob pattern and
// an optional message template. A candidate string (a file name, an import,
// a class name) is evaluated against the rules in order and takes the verdict
// of the first matching rule. A candidate no rule matches gets the Undefined
// verdict, which callers must treat as a defect of the table rather than as an
// implicit accept. Tables that end in a catch-all "*" rule never produce it.
//
// Message templates use HCL template syntax, so "bad file ${name}" renders
// with the candidate substituted for ${name} and the matching pattern for
// ${pattern}.
package rules
