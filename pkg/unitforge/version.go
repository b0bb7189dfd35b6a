// Package unitforge holds build information shared by the unitforge binary.
package unitforge

// Version is the unitforge release version.
const Version = "0.1.0"
