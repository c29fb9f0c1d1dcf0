package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/totegamma/momento/internal/domain"
)

type note struct {
	ID    uuid.UUID `gorm:"column:id"`
	Title *string   `gorm:"column:title"`
	Body  string    `gorm:"column:body"`
}

var notes = domain.Definition{
	Name:      "notes",
	Table:     "notes",
	Singular:  "note",
	Key:       []string{"id"},
	KeyKinds:  map[string]domain.FieldKind{"id": domain.FieldUUID},
	Filters:   map[string]domain.FieldKind{"body": domain.FieldString},
	Updatable: true,
}

type staticProvider struct {
	db  *gorm.DB
	err error
}

func (p staticProvider) Client() (*gorm.DB, error) { return p.db, p.err }

func setupNotes(t *testing.T) (*TableRepository[note], *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every pooled connection would otherwise see its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.Exec(`CREATE TABLE notes (
		id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-' || lower(hex(randomblob(2))) || '-' || lower(hex(randomblob(2))) || '-' || lower(hex(randomblob(6)))),
		title TEXT,
		body TEXT NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	return NewTableRepository[note](staticProvider{db: db}, notes), db
}

func TestTableRepositoryInsertReturnsRow(t *testing.T) {
	repo, _ := setupNotes(t)
	ctx := context.Background()

	rows, err := repo.Insert(ctx, domain.Fields{"body": "hello", "title": "greeting"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row got %d", len(rows))
	}
	if rows[0].ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if rows[0].Title == nil || *rows[0].Title != "greeting" || rows[0].Body != "hello" {
		t.Fatalf("unexpected row %+v", rows[0])
	}

	got, err := repo.Select(ctx, domain.Fields{"id": rows[0].ID.String()}, 1)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != rows[0].ID {
		t.Fatalf("expected inserted row back, got %+v", got)
	}
}

func TestTableRepositorySelectFilters(t *testing.T) {
	repo, _ := setupNotes(t)
	ctx := context.Background()

	for _, body := range []string{"a", "b", "a"} {
		if _, err := repo.Insert(ctx, domain.Fields{"id": uuid.NewString(), "body": body}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	all, err := repo.Select(ctx, domain.Fields{}, 0)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows got %d", len(all))
	}

	filtered, err := repo.Select(ctx, domain.Fields{"body": "a"}, 0)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 rows got %d", len(filtered))
	}

	limited, err := repo.Select(ctx, domain.Fields{"body": "a"}, 1)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 row got %d", len(limited))
	}

	none, err := repo.Select(ctx, domain.Fields{"body": "z"}, 0)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", none)
	}
}

func TestTableRepositoryUpdate(t *testing.T) {
	repo, _ := setupNotes(t)
	ctx := context.Background()

	id := uuid.NewString()
	if _, err := repo.Insert(ctx, domain.Fields{"id": id, "body": "draft", "title": "t"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	rows, err := repo.Update(ctx, domain.Fields{"id": id}, domain.Fields{"title": nil})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row got %d", len(rows))
	}
	if rows[0].Title != nil {
		t.Fatalf("expected title cleared, got %q", *rows[0].Title)
	}
	if rows[0].Body != "draft" {
		t.Fatalf("expected body preserved, got %q", rows[0].Body)
	}

	rows, err = repo.Update(ctx, domain.Fields{"id": uuid.NewString()}, domain.Fields{"body": "x"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows for missing id, got %d", len(rows))
	}
}

func TestTableRepositoryDelete(t *testing.T) {
	repo, _ := setupNotes(t)
	ctx := context.Background()

	id := uuid.NewString()
	if _, err := repo.Insert(ctx, domain.Fields{"id": id, "body": "bye"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	rows, err := repo.Delete(ctx, domain.Fields{"id": id})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Body != "bye" {
		t.Fatalf("expected deleted row back, got %+v", rows)
	}

	rows, err = repo.Delete(ctx, domain.Fields{"id": id})
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected nothing deleted twice, got %d", len(rows))
	}
}

func TestTableRepositoryDecodingError(t *testing.T) {
	repo, db := setupNotes(t)

	if err := db.Exec(`INSERT INTO notes (id, body) VALUES ('not-a-uuid', 'x')`).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := repo.Select(context.Background(), domain.Fields{}, 0)
	if !errors.Is(err, domain.ErrDecoding) {
		t.Fatalf("expected decoding error, got %v", err)
	}
}

func TestTableRepositoryExecutionError(t *testing.T) {
	repo, _ := setupNotes(t)

	_, err := repo.Insert(context.Background(), domain.Fields{"title": "no body"})
	if err == nil {
		t.Fatalf("expected not-null violation")
	}
	if errors.Is(err, domain.ErrDecoding) {
		t.Fatalf("execution failure must not be reported as decoding: %v", err)
	}
}

func TestTableRepositoryProviderError(t *testing.T) {
	cause := domain.ConfigurationError{Missing: []string{"MOMENTO_STORE_URL"}}
	repo := NewTableRepository[note](staticProvider{err: cause}, notes)

	_, err := repo.Select(context.Background(), domain.Fields{}, 0)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTableRepositoryMutationSQL(t *testing.T) {
	_, db := setupNotes(t)

	update := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return updateQuery(tx, "notes", domain.Fields{"id": "1"}, domain.Fields{"body": "x"})
	})
	if update != "UPDATE `notes` SET `body`=\"x\" WHERE `id` = \"1\" RETURNING *" {
		t.Fatalf("unexpected update sql %q", update)
	}

	del := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return deleteQuery(tx, "notes", domain.Fields{"id": "1"})
	})
	if del != "DELETE FROM `notes` WHERE `id` = \"1\" RETURNING *" {
		t.Fatalf("unexpected delete sql %q", del)
	}

	composite := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return deleteQuery(tx, "follows", domain.Fields{"follower_id": "a", "followee_id": "b"})
	})
	if composite != "DELETE FROM `follows` WHERE `followee_id` = \"b\" AND `follower_id` = \"a\" RETURNING *" {
		t.Fatalf("unexpected composite delete sql %q", composite)
	}
}
