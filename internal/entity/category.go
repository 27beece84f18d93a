package entity

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

type Address struct {
	ID     string `json:"id"`
	Street string `json:"street"`
	City   string `json:"city"`
	Campus string `json:"campus"`
}
