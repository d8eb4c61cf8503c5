// Package hcl provides the concrete HCL implementation of the configuration
// Loader and Converter interfaces defined in the config package.
//
// Checker files may be written in native HCL syntax (.hcl) or in HCL's JSON
// syntax (.json). Both decode into the same schema and both are translated
// into config.Model. Expressions in a check are evaluated against the run's
// context: the positional arguments (args, submission), the checker file's
// directory (checker_dir) and a small function library (file, upper, format,
// join, ...).
package hcl
