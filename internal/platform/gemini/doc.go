// Package gemini implements the analysis.Analyzer interface using
// Google's Gemini API. It owns prompt construction per analysis kind,
// retry with exponential backoff for transient failures, and token/cost
// accounting for each call.
package gemini
