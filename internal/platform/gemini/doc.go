// Package gemini implements generation.TextGenerator with Google's Gemini API.
//
// The generator maps conversation turns onto Gemini contents (system turns
// become the system instruction), retries transient failures with exponential
// backoff and jitter, and reports blocked, empty or truncated answers with the
// error values of the generation package.
package gemini
