// Package config defines the format-agnostic model of a grading run, along
// with the Loader and Converter interfaces that concrete configuration
// formats implement.
//
// A Model holds the checks declared in checker files and the checker
// manifests found in the checker library. The app and the delegates only ever
// see this model; parsing lives in the hcl package.
package config
