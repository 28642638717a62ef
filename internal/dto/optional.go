package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/projecthub/projecthub-api/internal/utils"
)

var jsonNull = []byte("null")

// OptionalDate distinguishes an absent field from an explicit null so partial
// updates can clear a date.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON accepts null, an RFC 3339 timestamp or a calendar date.
func (d *OptionalDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		d.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		d.Value = nil
		return nil
	}

	t, err := utils.ParseDate(raw)
	if err != nil {
		return err
	}
	d.Value = &t
	return nil
}

// Clear reports whether the field was sent as null.
func (d OptionalDate) Clear() bool {
	return d.Set && d.Value == nil
}

// OptionalID is an identifier that may be sent as a number, a numeric string
// or null.
type OptionalID struct {
	Set   bool
	Value *uint64
	Valid bool
}

// UnmarshalJSON never fails; malformed identifiers are flagged via Valid so
// callers can answer with a precise validation message.
func (id *OptionalID) UnmarshalJSON(data []byte) error {
	id.Set = true
	id.Valid = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		id.Value = nil
		return nil
	}

	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if raw == "" {
		id.Value = nil
		return nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		id.Valid = false
		return nil
	}
	id.Value = &v
	return nil
}

// Clear reports whether the field was sent as null or empty.
func (id OptionalID) Clear() bool {
	return id.Set && id.Valid && id.Value == nil
}
