package repository

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/models"
)

func createTestUnlock(t *testing.T, repo *AchievementRepository, userID uint, achievementID string) *models.UserAchievement {
	t.Helper()

	unlock := &models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    time.Now(),
		XPAwarded:     50,
	}
	if err := repo.Create(unlock); err != nil {
		t.Fatalf("Failed to create test unlock: %v", err)
	}
	return unlock
}

func TestAchievementRepository_CreateAndList(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewAchievementRepository(db)
	user := createTestUser(t, db, "alice")

	createTestUnlock(t, repo, user.ID, "first_streak")
	createTestUnlock(t, repo, user.ID, "perfect_day")

	unlocks, err := repo.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(unlocks) != 2 {
		t.Errorf("Expected 2 unlocks, got %d", len(unlocks))
	}

	count, err := repo.CountByUser(user.ID)
	if err != nil {
		t.Fatalf("CountByUser failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestAchievementRepository_DuplicateUnlock(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewAchievementRepository(db)
	user := createTestUser(t, db, "alice")

	createTestUnlock(t, repo, user.ID, "first_streak")

	err := repo.Create(&models.UserAchievement{
		UserID:        user.ID,
		AchievementID: "first_streak",
		UnlockedAt:    time.Now(),
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected ErrDuplicatedKey for repeat unlock, got %v", err)
	}

	// Same badge for another user is fine.
	other := createTestUser(t, db, "bob")
	createTestUnlock(t, repo, other.ID, "first_streak")
}

func TestAchievementRepository_MarkAllSeen(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewAchievementRepository(db)
	user := createTestUser(t, db, "alice")

	createTestUnlock(t, repo, user.ID, "first_streak")
	createTestUnlock(t, repo, user.ID, "perfect_day")

	if err := repo.MarkAllSeen(user.ID); err != nil {
		t.Fatalf("MarkAllSeen failed: %v", err)
	}

	unlocks, err := repo.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	for _, unlock := range unlocks {
		if !unlock.Seen {
			t.Errorf("Expected %s to be seen", unlock.AchievementID)
		}
	}
}

func TestAchievementRepository_DeleteAllForUser(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewAchievementRepository(db)
	user := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	createTestUnlock(t, repo, user.ID, "first_streak")
	createTestUnlock(t, repo, other.ID, "first_streak")

	if err := repo.DeleteAllForUser(user.ID); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}

	mine, _ := repo.CountByUser(user.ID)
	theirs, _ := repo.CountByUser(other.ID)
	if mine != 0 || theirs != 1 {
		t.Errorf("Expected only alice's unlocks removed, got %d/%d", mine, theirs)
	}
}
