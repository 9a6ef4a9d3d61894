package records

import "strings"

// FormatAddress renders a string address as-is and a structured address as
// "street • city, state • zip". Unknown shapes render as "".
func FormatAddress(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	m, ok := asMap(v)
	if !ok {
		return ""
	}
	line1 := String(m, "street", "streetAddress", "line1")
	cityState := joinNonEmpty(", ", String(m, "city"), String(m, "state"))
	return joinNonEmpty(" • ", line1, cityState, String(m, "zip", "postalCode"))
}

// PickupAddress resolves a pickup's address from its string or object fields.
func PickupAddress(pickup map[string]any) string {
	if v, ok := Lookup(pickup, "address"); ok {
		if s := FormatAddress(v); s != "" {
			return s
		}
	}
	if v, ok := Lookup(pickup, "pickupAddress"); ok {
		return FormatAddress(v)
	}
	return ""
}

// UserAddress renders the flat address fields stored on a user record.
func UserAddress(user map[string]any) string {
	if v, ok := Lookup(user, "address"); ok {
		if s := FormatAddress(v); s != "" {
			return s
		}
	}
	return FormatAddress(map[string]any{
		"street": String(user, "streetAddress"),
		"city":   String(user, "city"),
		"state":  String(user, "state"),
		"zip":    String(user, "zip"),
	})
}

// OrPlaceholder returns s, or Placeholder when s is blank.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
