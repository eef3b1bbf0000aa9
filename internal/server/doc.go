// Package server implements the MCP (Model Context Protocol) server for the
// contrast tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the backdrop
// contrast pipeline through the MCP protocol, so that an MCP client can ask
// which text colour stays readable over a given region of a background image.
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
//   - image_load: Load an image (path or URL) and get metadata
//   - image_dimensions: Get width and height
//
// Contrast Operations:
//   - contrast_compute: Resolve a colour for each target over an image
//   - contrast_resolve: Resolve a colour for a single background colour
//   - contrast_preview: Render the pixels sampled for one target
//   - contrast_map_region: Map a target rectangle to image pixels
//   - color_hex: Convert between RGB and hex
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path or URL and reused across tool calls. Remote images are checked
// against the origin given with WithOrigin; images whose pixels may not be
// read from that origin fail contrast_compute with an access error.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which starts with the error kind
//     ("configuration error", "load error", "access error", "validation error")
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server failed", "error", err)
//	}
package server
