package models

import "time"

// User is an account as stored by the development API
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile renders the user the way the API returns it
func (u *User) Profile() UserProfile {
	p := UserProfile{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"avatar_url": nil,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": u.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if u.AvatarURL != "" {
		p["avatar_url"] = u.AvatarURL
	}
	return p
}

// AsProvider renders the user as a bookable provider
func (u *User) AsProvider() Provider {
	return Provider{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
