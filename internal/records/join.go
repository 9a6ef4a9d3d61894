package records

import (
	"fmt"
	"strings"
)

// Index maps document ids to document data for in-memory joins.
type Index map[string]map[string]any

var refIDKeys = []string{"id", "itemId", "pickupId", "uid", "userId"}

// Ref is one resolved (or unresolved) reference. Unresolved references are
// kept with NotFound set so they stay visible. Unloaded marks a reference
// whose target collection could not be read.
type Ref struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	NotFound bool           `json:"not_found,omitempty"`
	Embedded bool           `json:"embedded,omitempty"`
	Unloaded bool           `json:"unloaded,omitempty"`
	Data     map[string]any `json:"-"`
}

// Resolved reports whether r carries target data.
func (r Ref) Resolved() bool {
	return !r.NotFound && !r.Unloaded
}

// NotFoundLabel renders the visible marker for a dangling reference.
func NotFoundLabel(kind, id string) string {
	return fmt.Sprintf("%s not found: %s", kind, OrPlaceholder(id))
}

// RefID extracts an id from a bare string or an object carrying an id field.
func RefID(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	if m, ok := asMap(v); ok {
		return String(m, refIDKeys...)
	}
	return ""
}

// Resolve joins each entry of refs against index. Entries that are full
// embedded objects are kept as-is when they do not resolve; anything else
// that does not resolve becomes a NotFound ref. A nil index means the target
// collection was not loaded, so bare ids become Unloaded refs instead. Order
// is preserved and no entry is dropped.
func Resolve(refs any, index Index, kind string, label func(id string, data map[string]any) string) []Ref {
	list := List(refs)
	out := make([]Ref, 0, len(list))
	for _, entry := range list {
		id := RefID(entry)
		if data, ok := index[id]; ok && id != "" {
			out = append(out, Ref{ID: id, Label: label(id, data), Data: data})
			continue
		}
		if m, ok := asMap(entry); ok && isEmbedded(m) {
			out = append(out, Ref{ID: id, Label: label(id, m), Data: m, Embedded: true})
			continue
		}
		if index == nil {
			out = append(out, Ref{ID: id, Label: label(id, nil), Unloaded: true})
			continue
		}
		out = append(out, Ref{ID: id, Label: NotFoundLabel(kind, id), NotFound: true})
	}
	return out
}

// ResolvedData returns the data of every resolved ref, skipping NotFound ones.
func ResolvedData(refs []Ref) []map[string]any {
	out := make([]map[string]any, 0, len(refs))
	for _, r := range refs {
		if r.Resolved() && r.Data != nil {
			out = append(out, r.Data)
		}
	}
	return out
}

// DisplayName picks the best human-readable name for a user record.
func DisplayName(user map[string]any) string {
	if s := String(user, "displayName"); s != "" {
		return s
	}
	if full := joinNonEmpty(" ", String(user, "firstName"), String(user, "lastName")); full != "" {
		return full
	}
	return String(user, "name", "email")
}

// ResolvePerson renders the driver or customer of a record. An inline name
// wins; otherwise the reference is joined against users and an unresolved id
// renders as "<kind> not found: <id>". With a nil users index the bare id is
// rendered.
func ResolvePerson(inlineName string, ref any, users Index, kind string) string {
	if s := strings.TrimSpace(inlineName); s != "" {
		return s
	}
	if m, ok := asMap(ref); ok {
		if s := DisplayName(m); s != "" {
			return s
		}
	}
	id := RefID(ref)
	if id == "" {
		return Placeholder
	}
	if users == nil {
		return id
	}
	user, ok := users[id]
	if !ok {
		return NotFoundLabel(kind, id)
	}
	if s := DisplayName(user); s != "" {
		return s
	}
	return id
}

// Embedded returns v as an object when it carries more than reference ids.
func Embedded(v any) (map[string]any, bool) {
	m, ok := asMap(v)
	if !ok || !isEmbedded(m) {
		return nil, false
	}
	return m, true
}

// isEmbedded reports whether m carries more than reference ids.
func isEmbedded(m map[string]any) bool {
	for k := range m {
		isIDKey := false
		for _, idk := range refIDKeys {
			if k == idk {
				isIDKey = true
				break
			}
		}
		if !isIDKey {
			return true
		}
	}
	return false
}
