// Package analysis defines the boundary between the task workers and
// external AI/LLM services. Workers depend only on the Analyzer interface;
// the concrete Gemini-backed implementation lives in
// internal/platform/gemini, keeping provider details out of the core.
package analysis
