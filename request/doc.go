// Package request executes HTTP GET calls against the catalog API with a
// per-attempt timeout and capped retries.
//
// Retry policy: up to Retries+1 attempts, waiting 2^attempt * BaseDelay
// (1s, 2s, 4s with the defaults) between them. Network failures, timeouts
// and every non-2xx status are retried alike unless Config.RetryIf says
// otherwise. After the last attempt an *ExhaustedError wraps the final
// *Error.
package request
