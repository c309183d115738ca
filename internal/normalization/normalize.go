package normalization

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"influencer-stats/internal/domain"
)

// Normalizer converts raw upstream records into canonical posts using one
// platform's accessor chains.
type Normalizer struct {
	chains Chains
}

// New creates a Normalizer for the given chains.
func New(chains Chains) *Normalizer {
	return &Normalizer{chains: chains}
}

// Normalize maps a raw record onto a Post. It is total: absent or malformed
// fields degrade to defaults, never to an error. Each call produces exactly
// one Post.
func (n *Normalizer) Normalize(raw Raw) domain.Post {
	post := domain.Post{
		ID:           n.probeID(raw),
		Shortcode:    n.probeText(raw, n.chains.Shortcode),
		TakenAt:      n.probeTimestamp(raw),
		PlayCount:    n.probeCount(raw, n.chains.Views),
		LikeCount:    n.probeCount(raw, n.chains.Likes),
		CommentCount: n.probeCount(raw, n.chains.Comments),
		Caption:      strings.TrimSpace(n.probeText(raw, n.chains.Caption)),
	}
	if u, ok := n.probeURL(raw); ok {
		post.ThumbnailURL = &u
	}
	return post
}

// NormalizeAll maps a page of raw records, preserving order and count.
func (n *Normalizer) NormalizeAll(raws []Raw) []domain.Post {
	posts := make([]domain.Post, 0, len(raws))
	for _, raw := range raws {
		posts = append(posts, n.Normalize(raw))
	}
	return posts
}

// probeID returns the first id alias rendered as a string, or "".
func (n *Normalizer) probeID(raw Raw) string {
	for _, acc := range n.chains.ID {
		v, ok := acc(raw)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok && s != "" {
			return s
		}
	}
	return ""
}

// probeText returns the first non-empty string in the chain, or "".
func (n *Normalizer) probeText(raw Raw, chain []Accessor) string {
	for _, acc := range chain {
		v, ok := acc(raw)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// probeCount returns the first numeric value in the chain, clamped to >= 0.
// Numeric strings count; anything else falls through.
func (n *Normalizer) probeCount(raw Raw, chain []Accessor) int64 {
	for _, acc := range chain {
		v, ok := acc(raw)
		if !ok {
			continue
		}
		if c, ok := asInt64(v); ok {
			if c < 0 {
				return 0
			}
			return c
		}
	}
	return 0
}

// probeTimestamp returns the first parseable timestamp in the chain, or nil.
func (n *Normalizer) probeTimestamp(raw Raw) *time.Time {
	for _, acc := range n.chains.Timestamp {
		v, ok := acc(raw)
		if !ok {
			continue
		}
		if t, ok := parseTimestamp(v); ok {
			return &t
		}
	}
	return nil
}

// probeURL returns the first syntactically valid absolute HTTP(S) URL
// reachable through the thumbnail chain.
func (n *Normalizer) probeURL(raw Raw) (string, bool) {
	for _, acc := range n.chains.Thumbnail {
		v, ok := acc(raw)
		if !ok {
			continue
		}
		if u, ok := firstURL(v); ok {
			return u, true
		}
	}
	return "", false
}

// parseTimestamp accepts epoch seconds (number or digit string) or an
// ISO-like string. The accepted string layouts are a closed set.
func parseTimestamp(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case float64:
		if ts <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(ts), 0), true
	case string:
		if ts == "" {
			return time.Time{}, false
		}
		if isDigits(ts) {
			sec, err := strconv.ParseInt(ts, 10, 64)
			if err != nil || sec <= 0 {
				return time.Time{}, false
			}
			return time.Unix(sec, 0), true
		}
		for _, layout := range []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02",
		} {
			if t, err := time.Parse(layout, ts); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// firstURL digs a valid URL out of the known upstream thumbnail shapes:
// a direct string, a list of strings, a list of {url} candidates, or an
// object wrapping a "candidates" list.
func firstURL(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if validURL(val) {
			return val, true
		}
	case []any:
		for _, item := range val {
			if u, ok := firstURL(item); ok {
				return u, true
			}
		}
	case map[string]any:
		if inner, ok := val["url"]; ok {
			if u, ok := firstURL(inner); ok {
				return u, true
			}
		}
		if inner, ok := val["candidates"]; ok {
			return firstURL(inner)
		}
	}
	return "", false
}

// validURL reports whether s is an absolute http or https URL.
func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		// JSON ids arrive as numbers; render without an exponent.
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return "", false
}

func asInt64(v any) (int64, bool) {
	switch c := v.(type) {
	case float64:
		return int64(c), true
	case string:
		if isDigits(c) {
			n, err := strconv.ParseInt(c, 10, 64)
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
