package domain

import (
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge between two profiles.
type Follow struct {
	FollowerID uuid.UUID `json:"follower_id" gorm:"column:follower_id"`
	FolloweeID uuid.UUID `json:"followee_id" gorm:"column:followee_id"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

type FollowCreate struct {
	FollowerID Optional[uuid.UUID] `json:"follower_id"`
	FolloweeID Optional[uuid.UUID] `json:"followee_id"`
}

func (f FollowCreate) Validate() error {
	return requireFields(map[string]bool{
		"follower_id": f.FollowerID.HasValue(),
		"followee_id": f.FolloweeID.HasValue(),
	})
}

func (f FollowCreate) Columns() Fields {
	cols := Fields{}
	putValue(cols, "follower_id", f.FollowerID)
	putValue(cols, "followee_id", f.FolloweeID)
	return cols
}

type Like struct {
	MomentoID uuid.UUID `json:"momento_id" gorm:"column:momento_id"`
	UserID    uuid.UUID `json:"user_id" gorm:"column:user_id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

type LikeCreate struct {
	MomentoID Optional[uuid.UUID] `json:"momento_id"`
	UserID    Optional[uuid.UUID] `json:"user_id"`
}

func (l LikeCreate) Validate() error {
	return requireFields(map[string]bool{
		"momento_id": l.MomentoID.HasValue(),
		"user_id":    l.UserID.HasValue(),
	})
}

func (l LikeCreate) Columns() Fields {
	f := Fields{}
	putValue(f, "momento_id", l.MomentoID)
	putValue(f, "user_id", l.UserID)
	return f
}

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"column:id"`
	MomentoID uuid.UUID `json:"momento_id" gorm:"column:momento_id"`
	UserID    uuid.UUID `json:"user_id" gorm:"column:user_id"`
	Body      string    `json:"body" gorm:"column:body"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

type CommentCreate struct {
	MomentoID Optional[uuid.UUID] `json:"momento_id"`
	UserID    Optional[uuid.UUID] `json:"user_id"`
	Body      Optional[string]    `json:"body"`
}

func (c CommentCreate) Validate() error {
	return requireFields(map[string]bool{
		"momento_id": c.MomentoID.HasValue(),
		"user_id":    c.UserID.HasValue(),
		"body":       c.Body.HasValue(),
	})
}

func (c CommentCreate) Columns() Fields {
	f := Fields{}
	putValue(f, "momento_id", c.MomentoID)
	putValue(f, "user_id", c.UserID)
	putValue(f, "body", c.Body)
	return f
}

type CommentUpdate struct {
	Body Optional[string] `json:"body"`
}

func (c CommentUpdate) Validate() error { return nil }

func (c CommentUpdate) Columns() Fields {
	f := Fields{}
	putPatch(f, "body", c.Body, false)
	return f
}
