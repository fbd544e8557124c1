// Package retry provides bounded retry logic for operations that may fail transiently.
//
// The [WithExponentialBackoff] function retries an operation with configurable max
// retries, initial delay, maximum delay and multiplier. A multiplier of 1 gives a
// fixed interval, which is how cluster discovery polls for its master. The sleep
// between attempts is injectable with [WithSleeper] so callers can test without
// real waiting.
package retry
