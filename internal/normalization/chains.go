// Package normalization maps raw upstream post records onto the canonical
// domain.Post schema. Upstream field names vary across schema revisions and
// platforms, so each logical field is resolved through an ordered accessor
// chain: the first accessor that yields a usable value wins.
package normalization

// Raw is a decoded upstream JSON object.
type Raw = map[string]any

// Accessor probes one known location of a logical field inside a raw record.
type Accessor func(raw Raw) (any, bool)

// Chains lists the accessor fallback chain per logical Post field.
// Chains are data: extending for a new upstream schema revision means
// appending an accessor, not adding branching.
type Chains struct {
	ID        []Accessor
	Shortcode []Accessor
	Timestamp []Accessor
	Views     []Accessor
	Likes     []Accessor
	Comments  []Accessor
	Caption   []Accessor
	Thumbnail []Accessor
}

// Field returns an accessor that walks the given path of map keys (string)
// and array indexes (int). It yields only non-nil values.
func Field(path ...any) Accessor {
	return func(raw Raw) (any, bool) {
		var cur any = raw
		for _, step := range path {
			switch key := step.(type) {
			case string:
				m, ok := cur.(map[string]any)
				if !ok {
					return nil, false
				}
				cur, ok = m[key]
				if !ok {
					return nil, false
				}
			case int:
				list, ok := cur.([]any)
				if !ok || key < 0 || key >= len(list) {
					return nil, false
				}
				cur = list[key]
			default:
				return nil, false
			}
		}
		if cur == nil {
			return nil, false
		}
		return cur, true
	}
}
