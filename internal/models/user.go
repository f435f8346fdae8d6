// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered member of the network.
// Friends is derived from the friendships table and is never persisted on the users row.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FirstName     string    `gorm:"size:50;not null" json:"firstName"`
	LastName      string    `gorm:"size:50;not null" json:"lastName"`
	Email         string    `gorm:"size:50;uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	PicturePath   string    `gorm:"default:''" json:"picturePath"`
	Friends       []uint    `gorm:"-" json:"friends"`
	Location      string    `json:"location"`
	Occupation    string    `json:"occupation"`
	ViewedProfile int       `json:"viewedProfile"`
	Impressions   int       `json:"impressions"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasFriend reports whether id is in the user's friend set.
func (u *User) HasFriend(id uint) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// FriendSummary is the public projection of a friend returned by friend listings.
type FriendSummary struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Occupation  string `json:"occupation"`
	Location    string `json:"location"`
	PicturePath string `json:"picturePath"`
}

// Summary projects the user onto FriendSummary.
func (u *User) Summary() FriendSummary {
	return FriendSummary{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Occupation:  u.Occupation,
		Location:    u.Location,
		PicturePath: u.PicturePath,
	}
}

// Summaries projects every user in order.
func Summaries(users []User) []FriendSummary {
	out := make([]FriendSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}
