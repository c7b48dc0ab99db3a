// Package startup handles application configuration and startup
// logging.
//
// Configuration is loaded from environment variables with documented
// defaults, directories are validated and created as needed, and the
// availability of the ffmpeg toolchain is probed once to decide whether
// video uploads can be accepted.
package startup
