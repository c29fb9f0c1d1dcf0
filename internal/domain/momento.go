package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Momento is a captured item: a photo and the 3D model generated from it.
type Momento struct {
	ID         uuid.UUID  `json:"id" gorm:"column:id"`
	OwnerID    uuid.UUID  `json:"owner_id" gorm:"column:owner_id"`
	Title      *string    `json:"title" gorm:"column:title"`
	Note       *string    `json:"note" gorm:"column:note"`
	ImagePath  string     `json:"image_path" gorm:"column:image_path"`
	ModelPath  string     `json:"model_path" gorm:"column:model_path"`
	Visibility string     `json:"visibility" gorm:"column:visibility"`
	TakenAt    *time.Time `json:"taken_at" gorm:"column:taken_at"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
}

type MomentoCreate struct {
	OwnerID    Optional[uuid.UUID] `json:"owner_id"`
	ImagePath  Optional[string]    `json:"image_path"`
	ModelPath  Optional[string]    `json:"model_path"`
	Title      Optional[string]    `json:"title"`
	Note       Optional[string]    `json:"note"`
	Visibility Optional[string]    `json:"visibility"`
	TakenAt    Optional[time.Time] `json:"taken_at"`
}

func (m MomentoCreate) Validate() error {
	if err := requireFields(map[string]bool{
		"owner_id":   m.OwnerID.HasValue(),
		"image_path": m.ImagePath.HasValue(),
		"model_path": m.ModelPath.HasValue(),
	}); err != nil {
		return err
	}
	return rejectNulls(map[string]bool{"visibility": m.Visibility.IsNull()})
}

func (m MomentoCreate) Columns() Fields {
	f := Fields{}
	putValue(f, "owner_id", m.OwnerID)
	putValue(f, "image_path", m.ImagePath)
	putValue(f, "model_path", m.ModelPath)
	putValue(f, "title", m.Title)
	putValue(f, "note", m.Note)
	putDefault(f, "visibility", m.Visibility, VisibilityPublic)
	putValue(f, "taken_at", m.TakenAt)
	return f
}

type MomentoUpdate struct {
	Title      Optional[string]    `json:"title"`
	Note       Optional[string]    `json:"note"`
	ImagePath  Optional[string]    `json:"image_path"`
	ModelPath  Optional[string]    `json:"model_path"`
	Visibility Optional[string]    `json:"visibility"`
	TakenAt    Optional[time.Time] `json:"taken_at"`
}

func (m MomentoUpdate) Validate() error { return nil }

func (m MomentoUpdate) Columns() Fields {
	f := Fields{}
	putPatch(f, "title", m.Title, true)
	putPatch(f, "note", m.Note, true)
	putPatch(f, "image_path", m.ImagePath, false)
	putPatch(f, "model_path", m.ModelPath, false)
	putPatch(f, "visibility", m.Visibility, false)
	putPatch(f, "taken_at", m.TakenAt, true)
	return f
}
