// Package history persists a log of completed conversions in a small
// SQLite database, so the API can report what was rendered recently.
package history
