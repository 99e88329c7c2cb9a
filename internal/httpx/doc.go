// Package httpx owns the HTTP session used to talk to the local flashcard
// bridge. A SessionManager lazily creates one pooled client, every request
// goes through a retry policy with exponential backoff, and a circuit
// breaker stops a batch from hammering a bridge that is not running.
package httpx
