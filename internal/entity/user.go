package entity

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Campus    string    `json:"campus,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	Favorites []string  `json:"favorites"`
	CreatedAt time.Time `json:"created_at"`
}

// HasFavorite reports whether postID is in the user's favorites.
func (u *User) HasFavorite(postID string) bool {
	for _, id := range u.Favorites {
		if id == postID {
			return true
		}
	}
	return false
}

// IsOwnerOrAdmin is the single authorization policy used by every
// lifecycle operation: a nil requester never qualifies.
func IsOwnerOrAdmin(requester *User, post *Post) bool {
	if requester == nil {
		return false
	}
	return requester.IsAdmin || requester.ID == post.SellerID
}
