// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the grading lifecycle (load the checker
// file, decode the delegate's input, invoke it once, render the report),
// decoupled from any specific entrypoint like a CLI.
package app
