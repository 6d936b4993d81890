// Package notify formats processed papers as chat messages and pushes them
// to a webhook sink with fixed pacing between sends.
package notify
