// Package http is the REST transport of the system of record.
//
// It exposes the records API used by clients to reconcile and replay their
// writes (delete by key, bulk insert, point delete and query), plus the
// unauthenticated health and version endpoints. Bearer token verification,
// request tracing, access logging and gzip compression are applied here
// before requests reach the service layer.
package http
