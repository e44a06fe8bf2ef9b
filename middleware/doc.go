// Package middleware provides the store's action pipeline: lifecycle
// bookkeeping for async actions plus development-only diagnostics.
package middleware
