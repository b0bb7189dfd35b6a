// Package types defines the unit definition model, the command journal
// interface, configuration, and the standard error types shared by the
// unitforge packages.
package types
