package upstream

import (
	"strconv"

	"influencer-stats/internal/normalization"
)

// probeString evaluates accessor aliases in priority order and returns the
// first value renderable as a non-empty string. Upstream ids show up both
// as strings and as bare numbers.
func probeString(raw normalization.Raw, chain []normalization.Accessor) (string, bool) {
	for _, acc := range chain {
		v, ok := acc(raw)
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64), true
		}
	}
	return "", false
}

// firstRecordList returns the first key holding a list, with every element
// that is an object kept as a raw record.
func firstRecordList(data normalization.Raw, keys ...string) []normalization.Raw {
	for _, key := range keys {
		list, ok := data[key].([]any)
		if !ok {
			continue
		}
		records := make([]normalization.Raw, 0, len(list))
		for _, item := range list {
			if rec, ok := item.(map[string]any); ok {
				records = append(records, rec)
			}
		}
		return records
	}
	return nil
}

// boolField reads a flag that upstream has shipped both as a bool and as
// the string "true".
func boolField(data normalization.Raw, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
