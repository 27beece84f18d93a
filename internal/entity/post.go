package entity

import (
	"fmt"
	"time"
)

type PostNature string

const (
	NatureForSale  PostNature = "for_sale"
	NatureGiveAway PostNature = "give_away"
)

// ParsePostNature rejects any nature outside the enumerated set.
func ParsePostNature(s string) (PostNature, error) {
	switch PostNature(s) {
	case NatureForSale, NatureGiveAway:
		return PostNature(s), nil
	}
	return "", &ValidationError{Field: "post_nature", Message: fmt.Sprintf("must be one of %q, %q", NatureForSale, NatureGiveAway)}
}

type PostState string

const (
	StatePending  PostState = "pending"
	StateApproved PostState = "approved"
	StateRejected PostState = "rejected"
	StateClosed   PostState = "closed"
)

// ParsePostState accepts exactly the four enumerated states. No
// transition-graph check happens here or anywhere else: admins may force
// any state from any state.
func ParsePostState(s string) (PostState, error) {
	switch PostState(s) {
	case StatePending, StateApproved, StateRejected, StateClosed:
		return PostState(s), nil
	}
	return "", &ValidationError{Field: "state", Message: fmt.Sprintf("must be one of %q, %q, %q, %q", StatePending, StateApproved, StateRejected, StateClosed)}
}

type Post struct {
	ID          string     `json:"id"`
	Nature      PostNature `json:"post_nature"`
	State       PostState  `json:"state"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Places      []string   `json:"places"`
	SellerID    string     `json:"seller_id,omitempty"`
	CategoryID  string     `json:"category_id"`
	Images      []string   `json:"images"`
	Video       string     `json:"video,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Attachments returns every attachment id referenced by the post,
// images first, video last.
func (p *Post) Attachments() []string {
	ids := make([]string, 0, len(p.Images)+1)
	ids = append(ids, p.Images...)
	if p.Video != "" {
		ids = append(ids, p.Video)
	}
	return ids
}

func (p *Post) HasAttachment(id string) bool {
	if id == "" {
		return false
	}
	if p.Video == id {
		return true
	}
	for _, img := range p.Images {
		if img == id {
			return true
		}
	}
	return false
}

// RemoveAttachment drops the attachment id from the post. It returns
// false when the id is not referenced by the post.
func (p *Post) RemoveAttachment(id string) bool {
	if p.Video == id && id != "" {
		p.Video = ""
		return true
	}
	for i, img := range p.Images {
		if img == id {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return true
		}
	}
	return false
}
