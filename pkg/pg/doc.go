// Package pg provides PostgreSQL connection management: pool construction
// with retries, goose schema migrations, a health check closure, and error
// classifiers for the storage layer.
package pg
