// Package model wraps the remote language model backends used for relevance
// classification and abstract translation. Backends are interchangeable; the
// Client adds retry with linear backoff and a circuit breaker on top of a
// single Backend.Call.
package model
