package models

// Session is the denormalized snapshot of the signed-in user, persisted
// alongside the bearer token under a fixed storage key. It is only valid
// while the paired token exists and is unexpired; the two are written and
// cleared together (avatar is the one field patched in place alone).
type Session struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	UserEmail string `json:"userEmail"`
	Avatar    string `json:"avatar,omitempty"`
}
