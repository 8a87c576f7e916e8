// Package server runs the HTTP transport of the system of record: startup,
// signal handling and graceful shutdown.
package server
