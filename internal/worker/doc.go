// Package worker executes dispatched analysis tasks. Each task type maps
// to a pipeline of analysis steps, run sequentially or fanned out in
// parallel. A failing non-mandatory step is replaced by a flagged fallback
// object instead of failing the task; only a mandatory step's failure
// makes the whole task fail. Completion is reported to the webhook
// endpoint, fire-and-forget.
package worker
