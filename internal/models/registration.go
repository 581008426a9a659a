// internal/models/registration.go
package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Keys the pipeline adds to every record. Form fields with these names are
// overwritten by the derived values.
const (
	KeyID          = "id"
	KeySource      = "source"
	KeySubmittedAt = "submittedAt"
)

// FieldSpec describes the rules for one form field. A nil MinLength or
// Pattern means the rule is not applied.
type FieldSpec struct {
	Name      string
	Label     string
	Required  bool
	MinLength *int
	Pattern   *regexp.Regexp
}

// IntPtr is a helper for optional FieldSpec.MinLength values.
func IntPtr(v int) *int {
	return &v
}

// FormSnapshot maps field name to the string value captured at submit time.
type FormSnapshot map[string]string

// Clone returns an independent copy.
func (s FormSnapshot) Clone() FormSnapshot {
	out := make(FormSnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Names returns the field names in sorted order.
func (s FormSnapshot) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SubmissionRecord is one accepted submission. It serializes as a flat JSON
// object: every form field plus source, submittedAt and id.
type SubmissionRecord struct {
	ID             string
	Fields         map[string]string
	Source         string
	SubmittedAtUTC time.Time
}

// NewSubmissionRecord copies snapshot and stamps it with source and time.
func NewSubmissionRecord(snapshot FormSnapshot, source string, now time.Time) SubmissionRecord {
	fields := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		if isReservedKey(k) {
			continue
		}
		fields[k] = v
	}
	return SubmissionRecord{
		ID:             uuid.New().String(),
		Fields:         fields,
		Source:         source,
		SubmittedAtUTC: now.UTC().Round(0),
	}
}

func isReservedKey(k string) bool {
	return k == KeyID || k == KeySource || k == KeySubmittedAt
}

// Payload is the flat object sent to the remote sink and stored locally.
func (r SubmissionRecord) Payload() map[string]string {
	out := make(map[string]string, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.ID != "" {
		out[KeyID] = r.ID
	}
	out[KeySource] = r.Source
	out[KeySubmittedAt] = r.SubmittedAtUTC.Format(time.RFC3339Nano)
	return out
}

func (r SubmissionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload())
}

func (r *SubmissionRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, err := time.Parse(time.RFC3339Nano, raw[KeySubmittedAt])
	if err != nil {
		return fmt.Errorf("invalid %s: %w", KeySubmittedAt, err)
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		if isReservedKey(k) {
			continue
		}
		fields[k] = v
	}

	*r = SubmissionRecord{
		ID:             raw[KeyID],
		Fields:         fields,
		Source:         raw[KeySource],
		SubmittedAtUTC: ts.UTC(),
	}
	return nil
}
