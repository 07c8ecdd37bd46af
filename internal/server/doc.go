// Package server implements the MCP (Model Context Protocol) server for the
// fiducial measurement tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load an image as grayscale and report its metadata
//   - image_dimensions: Get width and height
//
// Fiducial Measurement:
//   - fiducial_measure: Run both detection passes and report both distances
//   - fiducial_profile: Run one pass and return the profile for tuning
//   - fiducial_history: List recorded measurements (requires a history DB)
//
// # Image Caching
//
// Loaded rasters are cached by path for the lifetime of the process, so a
// fiducial_profile call after fiducial_measure on the same file does not
// decode it again.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger.NewStderr(logger.LevelInfo)))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
