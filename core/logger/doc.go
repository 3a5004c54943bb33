// Package logger provides structured logging built on zap.
//
// New builds a logger from the log configuration section: debug level uses
// the development config, everything else the production config; the format
// switches between colored console output and JSON.
//
// WithRequestID decorates a logger with the request id that the request-id
// middleware stores on the Fiber context, so every log line emitted while
// serving a request can be correlated.
package logger
