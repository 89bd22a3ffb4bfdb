package models

import "time"

// Post is a blog entry written by a single author.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	// GroupID is nulled out when the group is deleted.
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Excerpt returns the first 15 runes of the post text.
func (p Post) Excerpt() string {
	return excerpt(p.Text)
}

func excerpt(s string) string {
	const n = 15
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
