// Package handlers implements the HTTP API of the ascii theater
// service.
//
// Endpoints:
//   - POST /api/upload/image: convert an uploaded image to ASCII art
//   - POST /api/upload/video: upload a video and play it in the server
//     terminal
//   - POST /api/control/stop: stop the active playback session
//   - GET  /api/playback: playback session state
//   - GET  /api/history: recent conversions
//   - GET  /health, /livez, /readyz, /version: operational probes
//
// Request parameters are parsed and validated here, once, before the
// rendering core is invoked.
package handlers
