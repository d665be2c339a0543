// Package generation defines the boundary to external text-generation (LLM)
// services. The application asks a TextGenerator for short free text, such as
// the study status narrative, or for structured JSON, such as a parsed plan
// description. The Gemini implementation lives in internal/platform/gemini.
package generation
