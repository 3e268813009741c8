package repository

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/models"
)

func createTestGoal(t *testing.T, repo *GoalRepository, userID uint, name string, order int) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          name,
		Icon:          "🎯",
		FrequencyType: models.FrequencyDaily,
		EffortLevel:   models.EffortLight,
		IsActive:      true,
		Order:         order,
	}
	if err := repo.Create(goal); err != nil {
		t.Fatalf("Failed to create test goal: %v", err)
	}
	return goal
}

func TestGoalRepository_CreateAndGet(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewGoalRepository(db)
	user := createTestUser(t, db, "alice")

	goal := createTestGoal(t, repo, user.ID, "Academia", 0)

	got, err := repo.GetByID(user.ID, goal.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Academia" {
		t.Errorf("Expected Academia, got %s", got.Name)
	}

	// Another user's scope must not see the goal.
	if _, err := repo.GetByID(user.ID+1, goal.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record not found across users, got %v", err)
	}
}

func TestGoalRepository_ListActiveOrdering(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewGoalRepository(db)
	user := createTestUser(t, db, "alice")

	createTestGoal(t, repo, user.ID, "Segundo", 1)
	createTestGoal(t, repo, user.ID, "Primeiro", 0)
	inactive := createTestGoal(t, repo, user.ID, "Arquivado", 2)
	inactive.IsActive = false
	if err := repo.Update(inactive); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	goals, err := repo.ListActive(user.ID)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("Expected 2 active goals, got %d", len(goals))
	}
	if goals[0].Name != "Primeiro" || goals[1].Name != "Segundo" {
		t.Errorf("Expected display order, got %s / %s", goals[0].Name, goals[1].Name)
	}

	all, err := repo.ListAll(user.ID)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 goals overall, got %d", len(all))
	}
}

func TestGoalRepository_CountActive(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewGoalRepository(db)
	user := createTestUser(t, db, "alice")
	createTestGoal(t, repo, user.ID, "Academia", 0)
	createTestGoal(t, repo, user.ID, "Estudo", 1)

	count, err := repo.CountActive(user.ID)
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2, got %d", count)
	}
}

func TestGoalRepository_CreateBatch(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewGoalRepository(db)
	user := createTestUser(t, db, "alice")

	goals := []models.Goal{
		{UserID: user.ID, Name: "A", FrequencyType: models.FrequencyDaily, IsActive: true},
		{UserID: user.ID, Name: "B", FrequencyType: models.FrequencyDaily, IsActive: true},
	}
	if err := repo.CreateBatch(goals); err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}
	if err := repo.CreateBatch(nil); err != nil {
		t.Fatalf("Empty batch must be a no-op, got %v", err)
	}

	count, _ := repo.CountActive(user.ID)
	if count != 2 {
		t.Errorf("Expected 2 goals, got %d", count)
	}
}

func TestGoalRepository_Reorder(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewGoalRepository(db)
	user := createTestUser(t, db, "alice")
	a := createTestGoal(t, repo, user.ID, "A", 0)
	b := createTestGoal(t, repo, user.ID, "B", 1)

	if err := repo.Reorder(user.ID, []uint{b.ID, a.ID}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	goals, err := repo.ListActive(user.ID)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if goals[0].ID != b.ID || goals[1].ID != a.ID {
		t.Errorf("Expected swapped order, got %v then %v", goals[0].ID, goals[1].ID)
	}
}

func TestGoalRepository_SpecificDaysRoundTrip(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewGoalRepository(db)
	user := createTestUser(t, db, "alice")

	goal := &models.Goal{
		UserID:        user.ID,
		Name:          "Corrida",
		FrequencyType: models.FrequencyWeekly,
		SpecificDays:  models.StringList{"mon", "wed", "fri"},
		IsActive:      true,
	}
	if err := repo.Create(goal); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(user.ID, goal.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.SpecificDays) != 3 || got.SpecificDays[1] != "wed" {
		t.Errorf("Unexpected days: %v", got.SpecificDays)
	}
}

func TestGoalRepository_DeleteAllForUser(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewGoalRepository(db)
	user := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	createTestGoal(t, repo, user.ID, "A", 0)
	createTestGoal(t, repo, other.ID, "B", 0)

	if err := repo.DeleteAllForUser(user.ID); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}

	mine, _ := repo.ListAll(user.ID)
	theirs, _ := repo.ListAll(other.ID)
	if len(mine) != 0 || len(theirs) != 1 {
		t.Errorf("Expected only alice's goals removed, got %d/%d", len(mine), len(theirs))
	}
}
