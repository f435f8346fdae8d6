package models

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// Post is a piece of content in the feed. FirstName, LastName, Location and
// UserPicturePath are copied from the author when the post is created and are
// never re-synced.
type Post struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"userId"`
	FirstName       string    `gorm:"size:50;not null" json:"firstName"`
	LastName        string    `gorm:"size:50;not null" json:"lastName"`
	Location        string    `json:"location"`
	UserPicturePath string    `json:"userPicturePath"`
	Description     string    `gorm:"type:text" json:"description"`
	PicturePath     string    `json:"picturePath"`
	LikeRows        []Like    `gorm:"foreignKey:PostID" json:"-"`
	Likes           LikeSet   `gorm:"-" json:"likes"`
	Comments        []Comment `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AfterFind builds the like set from the preloaded like rows.
func (p *Post) AfterFind(_ *gorm.DB) error {
	p.HydrateLikes()
	return nil
}

// HydrateLikes rebuilds Likes from LikeRows.
func (p *Post) HydrateLikes() {
	p.Likes = make(LikeSet, len(p.LikeRows))
	for _, l := range p.LikeRows {
		p.Likes[l.UserID] = true
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// LikeSet is the set of user ids that liked a post. It encodes as the sparse
// map {"<userId>": true}; an entry is either present and true or absent.
type LikeSet map[uint]bool

// Has reports whether userID is in the set.
func (s LikeSet) Has(userID uint) bool {
	return s[userID]
}

// Count returns the number of likes.
func (s LikeSet) Count() int {
	return len(s)
}

// IDs returns the liking user ids in ascending order.
func (s LikeSet) IDs() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
