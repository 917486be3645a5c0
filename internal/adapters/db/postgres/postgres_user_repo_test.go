package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmorelos/accounts-backend/internal/domain/account/errors"
	"github.com/jmorelos/accounts-backend/internal/domain/account/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPostgresUserRepo_CRUD(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Email: "e@e", Username: "u", PasswordHash: "h", CreatedAt: time.Now()}
	id, err := repo.CreateUser(ctx, user)
	if err != nil || id != user.ID {
		t.Fatalf("create %v", err)
	}
	got, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil || got.ID != user.ID {
		t.Fatalf("get by email %v", err)
	}
	got2, err := repo.GetUserByID(ctx, user.ID)
	if err != nil || got2.Email != user.Email {
		t.Fatalf("get by id %v", err)
	}
	got3, err := repo.GetUserByUsername(ctx, user.Username)
	if err != nil || got3.ID != user.ID {
		t.Fatalf("get by username %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "missing@e"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresUserRepo_ResetTokenRoundTrip(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Email: "r@e", Username: "r", PasswordHash: "h"}
	if _, err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create %v", err)
	}

	digest := "digest"
	exp := time.Now().Add(time.Hour).UTC()
	user.ResetTokenHash = &digest
	user.ResetTokenExpiresAt = &exp
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("update %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "r@e")
	if err != nil {
		t.Fatalf("get %v", err)
	}
	if !got.HasResetToken() || *got.ResetTokenHash != digest {
		t.Fatalf("token fields not persisted: %+v", got)
	}

	got.ResetTokenHash = nil
	got.ResetTokenExpiresAt = nil
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("clear %v", err)
	}
	got, err = repo.GetUserByEmail(ctx, "r@e")
	if err != nil {
		t.Fatalf("get %v", err)
	}
	if got.HasResetToken() {
		t.Fatalf("token fields not cleared: %+v", got)
	}
}

func TestPostgresUserRepo_DuplicateEmail(t *testing.T) {
	db := setupDB(t)
	if err := db.Exec("CREATE UNIQUE INDEX idx_users_email ON users(email)").Error; err != nil {
		t.Fatalf("index: %v", err)
	}
	repo := NewPostgresUserRepo(db)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, model.User{ID: uuid.New(), Email: "dup@e", Username: "a", PasswordHash: "h"}); err != nil {
		t.Fatalf("create %v", err)
	}
	_, err := repo.CreateUser(ctx, model.User{ID: uuid.New(), Email: "dup@e", Username: "b", PasswordHash: "h"})
	if !errors.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}
