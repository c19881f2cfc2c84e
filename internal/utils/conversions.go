package utils

import "slices"

// ToStringSlice flattens a decoded JSON claim that may be a single string or
// a list into its non-empty string values.
func ToStringSlice(v any) []string {
	switch v := v.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return slices.DeleteFunc(slices.Clone(v), func(s string) bool { return s == "" })
	case []any:
		stringSlice := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				stringSlice = append(stringSlice, s)
			}
		}
		return stringSlice
	}
	return nil
}
