package domain

import (
	"time"

	"github.com/google/uuid"
)

// Collection is a named set of momentos owned by a profile.
type Collection struct {
	ID         uuid.UUID `json:"id" gorm:"column:id"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"column:owner_id"`
	Name       string    `json:"name" gorm:"column:name"`
	Visibility string    `json:"visibility" gorm:"column:visibility"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

type CollectionCreate struct {
	OwnerID    Optional[uuid.UUID] `json:"owner_id"`
	Name       Optional[string]    `json:"name"`
	Visibility Optional[string]    `json:"visibility"`
}

func (c CollectionCreate) Validate() error {
	if err := requireFields(map[string]bool{
		"owner_id": c.OwnerID.HasValue(),
		"name":     c.Name.HasValue(),
	}); err != nil {
		return err
	}
	return rejectNulls(map[string]bool{"visibility": c.Visibility.IsNull()})
}

func (c CollectionCreate) Columns() Fields {
	f := Fields{}
	putValue(f, "owner_id", c.OwnerID)
	putValue(f, "name", c.Name)
	putDefault(f, "visibility", c.Visibility, VisibilityPublic)
	return f
}

type CollectionUpdate struct {
	Name       Optional[string] `json:"name"`
	Visibility Optional[string] `json:"visibility"`
}

func (c CollectionUpdate) Validate() error { return nil }

func (c CollectionUpdate) Columns() Fields {
	f := Fields{}
	putPatch(f, "name", c.Name, false)
	putPatch(f, "visibility", c.Visibility, false)
	return f
}
