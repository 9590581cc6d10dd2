package repository

import (
	"context"
	"testing"
)

func TestSettingsRepository_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	if err := repo.Set(ctx, SettingCurrentGameID, "aB3dE5gH"); err != nil {
		t.Fatalf("Failed to set string value: %v", err)
	}

	var gameID string
	found, err := repo.GetTyped(ctx, SettingCurrentGameID, &gameID)
	if err != nil {
		t.Fatalf("Failed to get string value: %v", err)
	}
	if !found {
		t.Fatal("Expected setting to be found")
	}
	if gameID != "aB3dE5gH" {
		t.Errorf("Expected game id 'aB3dE5gH', got '%s'", gameID)
	}
}

func TestSettingsRepository_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	_ = repo.Set(ctx, SettingChannelList, []string{"1"})
	if err := repo.Set(ctx, SettingChannelList, []string{"1", "2"}); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}

	var channels []string
	if _, err := repo.GetTyped(ctx, SettingChannelList, &channels); err != nil {
		t.Fatalf("Failed to get list: %v", err)
	}
	if len(channels) != 2 {
		t.Errorf("Expected 2 channels, got %d", len(channels))
	}
}

func TestSettingsRepository_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)

	var value string
	found, err := repo.GetTyped(context.Background(), "nope", &value)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if found {
		t.Error("Expected missing setting to report found=false")
	}
}

func TestSettingsRepository_GetAllAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	_ = repo.Set(ctx, "a", 1)
	_ = repo.Set(ctx, "b", true)

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("Failed to get all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 settings, got %d", len(all))
	}
	if all["b"] != true {
		t.Errorf("Expected b=true, got %v", all["b"])
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, found, _ := repo.Get(ctx, "a"); found {
		t.Error("Expected setting to be deleted")
	}
}
