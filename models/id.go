// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is the canonical string identifier of every record.
//
// External identifiers arrive both as JSON strings and as JSON numbers.
// They are normalized into a single trimmed decimal representation at the
// decoding boundary, so store lookups compare IDs with plain equality and
// never coerce between representations.
type ID string

// NewID returns the canonical form of raw: surrounding whitespace is
// removed and integral decimal numbers lose leading zeros and signs of zero.
func NewID(raw string) ID {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	return ID(s)
}

// IDFromInt returns the canonical ID for a numeric identifier.
func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// String implements [fmt.Stringer].
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id string: %w", err)
		}
		*id = NewID(s)
		return nil
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("decode id number: %w", err)
	}

	if n, err := num.Int64(); err == nil {
		*id = IDFromInt(n)
		return nil
	}

	f, err := num.Float64()
	if err != nil {
		return fmt.Errorf("decode id number %q: %w", num.String(), err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		*id = IDFromInt(int64(f))
		return nil
	}
	*id = ID(num.String())

	return nil
}
