package repository

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/models"
)

func createTestMeta(t *testing.T, repo *MetaRepository, userID uint, name string, linkedGoalID *uint) *models.Meta {
	t.Helper()

	meta := &models.Meta{
		UserID:       userID,
		Name:         name,
		Icon:         "🎯",
		TargetValue:  10,
		Unit:         "vezes",
		StartDate:    "2025-06-01",
		EndDate:      "2025-06-30",
		LinkedGoalID: linkedGoalID,
	}
	if err := repo.Create(meta); err != nil {
		t.Fatalf("Failed to create test meta: %v", err)
	}
	return meta
}

func TestMetaRepository_CreateAndGet(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewMetaRepository(db)
	user := createTestUser(t, db, "alice")

	meta := createTestMeta(t, repo, user.ID, "Ler 10 livros", nil)

	got, err := repo.GetByID(user.ID, meta.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Ler 10 livros" || got.TargetValue != 10 {
		t.Errorf("Unexpected meta: %+v", got)
	}

	// Another user's scope must not see the meta.
	if _, err := repo.GetByID(user.ID+1, meta.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found across users, got %v", err)
	}
}

func TestMetaRepository_ListNewestFirst(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewMetaRepository(db)
	user := createTestUser(t, db, "alice")

	first := createTestMeta(t, repo, user.ID, "Primeira", nil)
	second := createTestMeta(t, repo, user.ID, "Segunda", nil)
	// Force distinct creation timestamps.
	db.Model(first).Update("created_at", first.CreatedAt.Add(-time.Second))

	metas, err := repo.List(user.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("Expected 2 metas, got %d", len(metas))
	}
	if metas[0].ID != second.ID {
		t.Errorf("Expected newest first, got %s", metas[0].Name)
	}
}

func TestMetaRepository_ListOpenLinked(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewMetaRepository(db)
	user := createTestUser(t, db, "alice")
	goalID := uint(3)

	linked := createTestMeta(t, repo, user.ID, "Vinculada", &goalID)
	createTestMeta(t, repo, user.ID, "Solta", nil)
	done := createTestMeta(t, repo, user.ID, "Concluída", &goalID)
	done.IsCompleted = true
	if err := repo.Update(done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	metas, err := repo.ListOpenLinked(user.ID, goalID)
	if err != nil {
		t.Fatalf("ListOpenLinked failed: %v", err)
	}
	if len(metas) != 1 || metas[0].ID != linked.ID {
		t.Errorf("Expected only the open linked meta, got %+v", metas)
	}
}

func TestMetaRepository_UpdateProgress(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewMetaRepository(db)
	user := createTestUser(t, db, "alice")
	meta := createTestMeta(t, repo, user.ID, "Correr", nil)

	meta.CurrentValue = 7
	if err := repo.Update(meta); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(user.ID, meta.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CurrentValue != 7 {
		t.Errorf("Expected progress 7, got %d", got.CurrentValue)
	}
}

func TestMetaRepository_DeleteScoped(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewMetaRepository(db)
	user := createTestUser(t, db, "alice")
	meta := createTestMeta(t, repo, user.ID, "Correr", nil)

	// Deleting with the wrong user leaves the meta in place.
	if err := repo.Delete(user.ID+1, meta.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(user.ID, meta.ID); err != nil {
		t.Fatalf("Expected meta to survive foreign delete: %v", err)
	}

	if err := repo.Delete(user.ID, meta.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(user.ID, meta.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found after delete, got %v", err)
	}
}

func TestMetaRepository_DeleteAllForUser(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewMetaRepository(db)
	user := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	createTestMeta(t, repo, user.ID, "A", nil)
	createTestMeta(t, repo, other.ID, "B", nil)

	if err := repo.DeleteAllForUser(user.ID); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}

	mine, _ := repo.List(user.ID)
	theirs, _ := repo.List(other.ID)
	if len(mine) != 0 || len(theirs) != 1 {
		t.Errorf("Expected only alice's metas removed, got %d/%d", len(mine), len(theirs))
	}
}
