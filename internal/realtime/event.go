package realtime

import (
	"fmt"
	"strings"
)

// Operation mirrors the row-level change kinds emitted by the data layer.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// ChangeEvent is a payload-less row-change notification. Subscribers are
// expected to re-fetch whatever state they need; the event never carries row
// contents.
type ChangeEvent struct {
	Table        string `json:"table"`
	Op           string `json:"op"`
	FilterColumn string `json:"filter_column"`
	FilterValue  string `json:"filter_value"`
}

// Matches reports whether the event is addressed to a subscriber watching
// table rows where filterColumn equals filterValue.
func (e ChangeEvent) Matches(table, filterColumn, filterValue string) bool {
	return e.Table == table && e.FilterColumn == filterColumn && e.FilterValue == filterValue
}

// BuildFilter renders the wire filter string. The value is passed through
// verbatim; callers own any escaping.
func BuildFilter(column, value string) string {
	return fmt.Sprintf("%s=eq.%s", column, value)
}

// ParseFilter splits a "<column>=eq.<value>" filter string.
func ParseFilter(filter string) (column, value string, ok bool) {
	idx := strings.Index(filter, "=eq.")
	if idx <= 0 {
		return "", "", false
	}
	return filter[:idx], filter[idx+len("=eq."):], true
}
