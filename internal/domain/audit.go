package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Audit actions.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// FieldChange records one changed field of an audited entity.
type FieldChange struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

// FieldChanges is stored as a JSONB column on the audit row.
type FieldChanges []FieldChange

func (c FieldChanges) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *FieldChanges) Scan(src interface{}) error {
	return scanJSON(src, c)
}

// AuditLog is one entry of the audit trail.
type AuditLog struct {
	ID         int64        `json:"id" db:"id"`
	RequestID  string       `json:"request_id" db:"request_id"`
	Username   string       `json:"username" db:"username"`
	Action     string       `json:"action" db:"action"`
	Entity     string       `json:"entity" db:"entity"`
	EntityID   string       `json:"entity_id" db:"entity_id"`
	Method     string       `json:"method" db:"method"`
	Path       string       `json:"path" db:"path"`
	StatusCode int          `json:"status_code" db:"status_code"`
	Changes    FieldChanges `json:"changes" db:"changes"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	Entity   string
	EntityID string
	Username string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// Offset returns the row offset for the filter's page.
func (f AuditFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// ignoredDiffFields never show up in audit diffs.
var ignoredDiffFields = map[string]struct{}{
	"updated_at": {},
	"created_at": {},
}

// DiffFields compares the JSON form of two values and returns the changed
// top-level fields ordered by field name.
func DiffFields(before, after interface{}) (FieldChanges, error) {
	oldFields, err := toFieldMap(before)
	if err != nil {
		return nil, fmt.Errorf("decode previous state: %w", err)
	}
	newFields, err := toFieldMap(after)
	if err != nil {
		return nil, fmt.Errorf("decode new state: %w", err)
	}

	keys := make(map[string]struct{}, len(oldFields)+len(newFields))
	for k := range oldFields {
		keys[k] = struct{}{}
	}
	for k := range newFields {
		keys[k] = struct{}{}
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		if _, skip := ignoredDiffFields[k]; skip {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	var changes FieldChanges
	for _, name := range names {
		o, n := oldFields[name], newFields[name]
		if reflect.DeepEqual(o, n) {
			continue
		}
		changes = append(changes, FieldChange{Field: name, Old: o, New: n})
	}
	return changes, nil
}

func toFieldMap(v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return map[string]interface{}{}, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return map[string]interface{}{}, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
