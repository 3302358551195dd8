package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func useTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := DB
	DB = db
	t.Cleanup(func() { DB = prev })
}

func TestSettingsRoundTrip(t *testing.T) {
	useTestDB(t)

	if _, ok, err := GetSetting("missing"); err != nil || ok {
		t.Fatalf("missing key should be (ok=false, nil), got ok=%v err=%v", ok, err)
	}

	if err := SetSetting("greeting", "  hello  "); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := GetSetting("greeting")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != "hello" {
		t.Fatalf("value should be trimmed, got %q", value)
	}

	// Overwrite wins.
	if err := SetSetting("greeting", "hi"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if value, _, _ = GetSetting("greeting"); value != "hi" {
		t.Fatalf("expected overwritten value, got %q", value)
	}

	if err := DeleteSetting("greeting"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := GetSetting("greeting"); ok {
		t.Fatal("deleted key should be absent")
	}
}

func TestSettingsListRoundTrip(t *testing.T) {
	useTestDB(t)

	if _, ok, err := GetSettingList("fields"); err != nil || ok {
		t.Fatalf("missing list should be (ok=false, nil), got ok=%v err=%v", ok, err)
	}

	if err := SetSettingList("fields", []string{"pageContent", "sidebar"}); err != nil {
		t.Fatalf("set list: %v", err)
	}
	values, ok, err := GetSettingList("fields")
	if err != nil || !ok {
		t.Fatalf("get list: ok=%v err=%v", ok, err)
	}
	if len(values) != 2 || values[0] != "pageContent" || values[1] != "sidebar" {
		t.Fatalf("unexpected list: %v", values)
	}

	// An empty list persists as [] and reads back non-nil.
	if err := SetSettingList("fields", nil); err != nil {
		t.Fatalf("set empty list: %v", err)
	}
	values, ok, err = GetSettingList("fields")
	if err != nil || !ok {
		t.Fatalf("get empty list: ok=%v err=%v", ok, err)
	}
	if values == nil || len(values) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", values)
	}

	// Malformed stored values surface as errors.
	if err := SetSetting("fields", "not json"); err != nil {
		t.Fatalf("set raw: %v", err)
	}
	if _, _, err := GetSettingList("fields"); err == nil {
		t.Fatal("malformed list should error")
	}
}
