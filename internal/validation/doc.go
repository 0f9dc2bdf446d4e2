// Package validation provides input validation for object keys and endpoints.
// Keys are validated before any upload call is made so that an unusable
// path fails locally with a clear message instead of a service error.
package validation
