package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nerrad567/finger/internal/infrastructure/database"
	_ "github.com/nerrad567/finger/migrations"
)

func TestFileStore_MissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.EnabledBots == nil || len(got.EnabledBots) != 0 {
		t.Errorf("Load() = %#v, want empty list", got)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.json")
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Save(ctx, Settings{EnabledBots: []string{"wow", "games/zombie", "wow"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "\"enabled_bots\": [\n    \"games/zombie\",\n    \"wow\"\n  ]") {
		t.Errorf("file is not pretty-printed as expected:\n%s", data)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []string{"games/zombie", "wow"}; !reflect.DeepEqual(got.EnabledBots, want) {
		t.Errorf("Load() = %v, want %v", got.EnabledBots, want)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load() error = %v, want ErrCorrupt", err)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "finger.db"), WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // test cleanup
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	s := NewSQLiteStore(db)
	got, err := s.Load(ctx)
	if err != nil || len(got.EnabledBots) != 0 {
		t.Fatalf("Load() on empty table = %v, %v", got, err)
	}

	if err := s.Save(ctx, Settings{EnabledBots: []string{"b", "a"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, Settings{EnabledBots: []string{"c", "a"}}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(got.EnabledBots, want) {
		t.Errorf("Load() = %v, want %v", got.EnabledBots, want)
	}
}

func TestNormalize(t *testing.T) {
	got := Settings{EnabledBots: []string{"z", "a", "z"}}.Normalize()
	if !reflect.DeepEqual(got.EnabledBots, []string{"a", "z"}) {
		t.Errorf("Normalize() = %v", got.EnabledBots)
	}
	if (Settings{}).Normalize().EnabledBots == nil {
		t.Error("Normalize() of zero value should return empty non-nil list")
	}
}
