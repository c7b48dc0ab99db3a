// Package middleware provides the HTTP middleware chain: request
// logging, Prometheus metrics recording and response compression.
package middleware
