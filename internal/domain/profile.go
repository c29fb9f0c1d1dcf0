package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a user profile row.
type Profile struct {
	ID              uuid.UUID `json:"id" gorm:"column:id"`
	FullName        string    `json:"full_name" gorm:"column:full_name"`
	Email           string    `json:"email" gorm:"column:email"`
	AvatarImagePath *string   `json:"avatar_image_path" gorm:"column:avatar_image_path"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
}

// ProfileCreate carries the auth user id, so unlike other resources the id is client supplied.
type ProfileCreate struct {
	ID              Optional[uuid.UUID] `json:"id"`
	FullName        Optional[string]    `json:"full_name"`
	Email           Optional[string]    `json:"email"`
	AvatarImagePath Optional[string]    `json:"avatar_image_path"`
}

func (p ProfileCreate) Validate() error {
	return requireFields(map[string]bool{
		"id":        p.ID.HasValue(),
		"full_name": p.FullName.HasValue(),
	})
}

func (p ProfileCreate) Columns() Fields {
	f := Fields{}
	putValue(f, "id", p.ID)
	putValue(f, "full_name", p.FullName)
	putValue(f, "email", p.Email)
	putValue(f, "avatar_image_path", p.AvatarImagePath)
	return f
}

type ProfileUpdate struct {
	FullName        Optional[string] `json:"full_name"`
	Email           Optional[string] `json:"email"`
	AvatarImagePath Optional[string] `json:"avatar_image_path"`
}

func (p ProfileUpdate) Validate() error { return nil }

func (p ProfileUpdate) Columns() Fields {
	f := Fields{}
	putPatch(f, "full_name", p.FullName, false)
	putPatch(f, "email", p.Email, false)
	putPatch(f, "avatar_image_path", p.AvatarImagePath, true)
	return f
}
