package domain

import "time"

type Member struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
}

// Group is a named roster owned by one user. Score records reference members
// by MemberID only; Name is the current display name.
type Group struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	GroupName string    `json:"groupName"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MemberNames maps member ids to their current display names.
func (g Group) MemberNames() map[string]string {
	out := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		out[m.MemberID] = m.Name
	}
	return out
}

type GroupInput struct {
	GroupName string
	Members   []Member
}
