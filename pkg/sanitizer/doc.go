// Package sanitizer normalizes meeting and recommendation input before
// validation and storage.
//
// All functions are idempotent. Invalid input yields empty values rather
// than errors; rejecting it is the validator's job.
package sanitizer
