// Package server holds the HTTP server configuration section.
package server
