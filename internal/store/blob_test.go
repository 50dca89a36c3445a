package store

import (
	"bytes"
	"testing"

	"github.com/hferris/earnhub/internal/database"
)

func setupBlobTestDB(t *testing.T) *BlobStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBlobStore(db)
}

func TestBlobLoadAbsent(t *testing.T) {
	bs := setupBlobTestDB(t)

	got, err := bs.Load(KeyUsers)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() = %v, want nil for absent key", got)
	}
}

func TestBlobSaveAndLoad(t *testing.T) {
	bs := setupBlobTestDB(t)

	want := []byte(`[{"username":"alice"}]`)
	if err := bs.Save(KeyUsers, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := bs.Load(KeyUsers)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() = %s, want %s", got, want)
	}
}

func TestBlobSaveOverwrites(t *testing.T) {
	bs := setupBlobTestDB(t)

	if err := bs.Save(KeyActiveUser, []byte(`"alice"`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := bs.Save(KeyActiveUser, []byte(`"bob"`)); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	got, err := bs.Load(KeyActiveUser)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != `"bob"` {
		t.Errorf("Load() = %s, want %q", got, `"bob"`)
	}
}

func TestBlobRemove(t *testing.T) {
	bs := setupBlobTestDB(t)

	if err := bs.Save(KeyActiveUser, []byte(`"alice"`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := bs.Remove(KeyActiveUser); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	got, err := bs.Load(KeyActiveUser)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() after Remove = %v, want nil", got)
	}
}

func TestBlobRemoveAbsent(t *testing.T) {
	bs := setupBlobTestDB(t)

	if err := bs.Remove("never_written"); err != nil {
		t.Errorf("Remove() of absent key error = %v, want nil", err)
	}
}

func TestBlobKeysAreIndependent(t *testing.T) {
	bs := setupBlobTestDB(t)

	if err := bs.Save(KeyTasks, []byte(`[1]`)); err != nil {
		t.Fatalf("Save tasks: %v", err)
	}
	if err := bs.Save(KeyBanners, []byte(`[2]`)); err != nil {
		t.Fatalf("Save banners: %v", err)
	}

	tasks, err := bs.Load(KeyTasks)
	if err != nil {
		t.Fatalf("Load tasks: %v", err)
	}
	if string(tasks) != `[1]` {
		t.Errorf("tasks = %s, want [1]", tasks)
	}

	banners, err := bs.Load(KeyBanners)
	if err != nil {
		t.Fatalf("Load banners: %v", err)
	}
	if string(banners) != `[2]` {
		t.Errorf("banners = %s, want [2]", banners)
	}
}
