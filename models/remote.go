package models

import (
	"encoding/json"
	"time"
)

// RemoteRecord is the wire and storage form of a record held by the system
// of record. Date and Service carry the composite scope for key-scoped
// collections (attendance) and are empty for the rest.
type RemoteRecord struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Date       string          `json:"date,omitempty"`
	Service    string          `json:"service,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecordFilter narrows a remote query. Zero fields do not filter.
type RecordFilter struct {
	Date    string   `json:"date,omitempty"`
	Service string   `json:"service,omitempty"`
	IDs     []string `json:"ids,omitempty"`
}

// ForKey returns a filter matching every record of the service key.
func ForKey(key ServiceKey) RecordFilter {
	return RecordFilter{Date: key.Date, Service: key.ServiceName}
}

// BulkInsertResponse is returned by the records bulk insert endpoint.
type BulkInsertResponse struct {
	InsertedIDs []string `json:"inserted_ids"`
}

// DeleteResponse is returned by the records delete endpoints.
type DeleteResponse struct {
	Affected int64 `json:"affected"`
}

// RecordsResponse is returned by the records query endpoint.
type RecordsResponse struct {
	Records []RemoteRecord `json:"records"`
	Length  int            `json:"length"`
}
