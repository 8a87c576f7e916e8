package models

import (
	"errors"
	"strings"
	"time"
)

// ServiceDateLayout is the layout of [ServiceKey.Date].
const ServiceDateLayout = "2006-01-02"

var (
	// ErrServiceKeyDate is returned when a service key date is not a valid
	// YYYY-MM-DD calendar date.
	ErrServiceKeyDate = errors.New("service key date must be YYYY-MM-DD")

	// ErrServiceKeyName is returned when a service key has an empty service name.
	ErrServiceKeyName = errors.New("service key name is empty")
)

// AttendanceStatus is the value recorded for one member at one service.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// ServiceKey is the composite (date, service name) scope of one attendance
// replacement. All attendance rows sharing a key are replaced together.
type ServiceKey struct {
	Date        string `json:"date"`
	ServiceName string `json:"service_name"`
}

// Validate checks that the date parses and the service name is not blank.
func (k ServiceKey) Validate() error {
	if _, err := time.Parse(ServiceDateLayout, k.Date); err != nil {
		return ErrServiceKeyDate
	}
	if strings.TrimSpace(k.ServiceName) == "" {
		return ErrServiceKeyName
	}
	return nil
}

// String returns "date/service name", used as a lock key and a log field.
func (k ServiceKey) String() string {
	return k.Date + "/" + k.ServiceName
}

// AttendanceRecord is one member's attendance at one service occurrence.
type AttendanceRecord struct {
	ID          ID               `json:"id"`
	Date        string           `json:"date"`
	ServiceName string           `json:"service_name"`
	MemberID    ID               `json:"member_id"`
	Status      AttendanceStatus `json:"status"`
}

// RecordID implements [Record].
func (a AttendanceRecord) RecordID() ID { return a.ID }

// Key returns the service key the record belongs to.
func (a AttendanceRecord) Key() ServiceKey {
	return ServiceKey{Date: a.Date, ServiceName: a.ServiceName}
}

// AttendanceBatch is the payload of a queued attendance replacement: the
// complete target state for one service key, indexed by member reference
// (an id, an email or a display name).
type AttendanceBatch struct {
	Key     ServiceKey                  `json:"key"`
	Entries map[string]AttendanceStatus `json:"entries"`
}

// CanonicalIdentity is the definitive member a reference resolved to.
type CanonicalIdentity struct {
	MemberID    ID     `json:"member_id"`
	DisplayName string `json:"display_name"`
}

// ResolutionWarning reports a batch entry dropped because its reference
// could not be resolved to a member.
type ResolutionWarning struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// ReconcileResult summarizes one replace-by-key reconciliation.
type ReconcileResult struct {
	Key         ServiceKey          `json:"key"`
	Inserted    int                 `json:"inserted"`
	InsertedIDs []string            `json:"inserted_ids,omitempty"`
	Warnings    []ResolutionWarning `json:"warnings,omitempty"`

	// Records is the authoritative attendance set for Key after the refetch,
	// or the optimistic local set when Queued is true.
	Records []AttendanceRecord `json:"records"`
	// Queued reports that the replacement was stored locally and queued for
	// the next sync pass instead of being reconciled immediately.
	Queued bool `json:"queued,omitempty"`
}
