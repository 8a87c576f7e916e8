package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// snapshotTimestampKey is the only reserved top-level key of a backup document.
const snapshotTimestampKey = "timestamp"

// ErrSnapshotTimestamp is returned when a backup document has no parsable
// RFC 3339 "timestamp" field.
var ErrSnapshotTimestamp = errors.New("backup document has no valid timestamp")

// BackupSnapshot is a point-in-time export of the local stores.
//
// It is serialized as one flat JSON object:
//
//	{"timestamp": "2025-04-20T10:00:00Z", "members": [...], "settings": {...}}
//
// Every key other than "timestamp" names a collection. Array collections
// hold record arrays; singletons hold one object.
type BackupSnapshot struct {
	Timestamp   time.Time
	Collections map[string]json.RawMessage
}

// MarshalJSON implements [json.Marshaler].
func (s BackupSnapshot) MarshalJSON() ([]byte, error) {
	flat := make(map[string]json.RawMessage, len(s.Collections)+1)
	for name, raw := range s.Collections {
		flat[name] = raw
	}

	ts, err := json.Marshal(s.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	flat[snapshotTimestampKey] = ts

	return json.Marshal(flat)
}

// UnmarshalJSON implements [json.Unmarshaler]. A document without a valid
// timestamp fails with [ErrSnapshotTimestamp].
func (s *BackupSnapshot) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode backup document: %w", err)
	}
	if flat == nil {
		return fmt.Errorf("decode backup document: %w", ErrSnapshotTimestamp)
	}

	rawTS, ok := flat[snapshotTimestampKey]
	if !ok {
		return ErrSnapshotTimestamp
	}

	var tsString string
	if err := json.Unmarshal(rawTS, &tsString); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotTimestamp, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, tsString)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotTimestamp, err)
	}
	delete(flat, snapshotTimestampKey)

	s.Timestamp = ts
	s.Collections = flat

	return nil
}

// Has reports whether the snapshot carries a value for collection. A key
// blanked out to null or to an empty string counts as absent.
func (s BackupSnapshot) Has(collection string) bool {
	raw, ok := s.Collections[collection]
	if !ok {
		return false
	}
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`:
		return false
	}
	return true
}
