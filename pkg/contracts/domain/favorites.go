package domain

import "sort"

// FavoritesDocument is the single global favorites document: a mapping
// from username to that user's favorite identity keys. Per-user lists are
// kept sorted so the serialized form is deterministic.
type FavoritesDocument struct {
	Users map[string][]string `json:"users"`
}

// NewFavoritesDocument returns an empty document with a non-nil user map.
func NewFavoritesDocument() *FavoritesDocument {
	return &FavoritesDocument{Users: make(map[string][]string)}
}

// Normalize ensures the user map is non-nil. Documents decoded from JSON
// may carry a nil map when the stored file was empty or malformed.
func (d *FavoritesDocument) Normalize() {
	if d.Users == nil {
		d.Users = make(map[string][]string)
	}
}

// UserSet returns the favorite keys of one user as a set. Unknown users
// yield an empty set, never nil.
func (d *FavoritesDocument) UserSet(username string) map[string]struct{} {
	set := make(map[string]struct{}, len(d.Users[username]))
	for _, key := range d.Users[username] {
		set[key] = struct{}{}
	}
	return set
}

// SetUser replaces one user's favorites with the given set, stored
// sorted. All other users are left untouched.
func (d *FavoritesDocument) SetUser(username string, favorites map[string]struct{}) {
	d.Normalize()
	d.Users[username] = SortedKeys(favorites)
}

// SortedKeys flattens a favorites set into a deterministic sorted list.
func SortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
