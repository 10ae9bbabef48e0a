// Package sanitizer normalizes untrusted input before it is validated or
// stored. Sanitization never rejects input; it only canonicalizes it, so
// validation stays the single source of rejection decisions.
package sanitizer
