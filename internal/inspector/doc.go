// Package inspector serves a small HTTP API for watching scenarios run.
//
// Routes:
//
//	GET  /healthz   liveness probe
//	GET  /metrics   Prometheus metrics
//	GET  /trace     reports of the latest run, as JSON
//	POST /run       re-run the scenarios and return the new reports
//	GET  /events    websocket stream of engine events and trace entries
//
// Every websocket frame is a JSON Message. Frames are only sent, never
// read; a client that stops reading is dropped on the next write error.
package inspector
