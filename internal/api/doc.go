// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the task lifecycle: submission, status polling, result retrieval,
// the internal completion webhook, and cleanup.
package api
