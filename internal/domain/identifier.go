package domain

// ProfileIdentifier holds the opaque upstream token(s) that authorize
// pagination requests for one profile. Immutable once resolved.
// TikTok resolves to (secUid, userId); Instagram resolves to a single pk.
type ProfileIdentifier struct {
	Primary   string // required pagination token (secUid / pk)
	Secondary string // optional companion token (TikTok userId), may be empty
}

// Empty reports whether no usable identifier was resolved.
func (id *ProfileIdentifier) Empty() bool {
	return id == nil || id.Primary == ""
}
