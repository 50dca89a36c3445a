package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hferris/earnhub/internal/database"
	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil, nil, discardLogger(), nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// With S3 config -> idle
	m2 := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, nil, nil, discardLogger(), nil)
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, nil, nil, discardLogger(), cb)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestUpdateS3Config(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, discardLogger(), nil)
	if m.Status().State != StateDisabled {
		t.Fatalf("initial state = %q, want %q", m.Status().State, StateDisabled)
	}

	m.UpdateS3Config(S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Region: "us-east-1"})
	if m.Status().State != StateIdle {
		t.Errorf("state after set = %q, want %q", m.Status().State, StateIdle)
	}

	m.UpdateS3Config(S3Config{})
	if m.Status().State != StateDisabled {
		t.Errorf("state after clear = %q, want %q", m.Status().State, StateDisabled)
	}
}

func TestRunNowNotConfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, discardLogger(), nil)

	if _, err := m.RunNow(context.Background(), "passphrase"); err == nil {
		t.Fatal("expected error when S3 is not configured")
	}
}

func TestRunNowAndDownload(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "earnhub.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	bs := store.NewBackupStore(db)
	ss := store.NewSettingsStore(db)

	m := NewManager(Config{
		S3:     S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		DBPath: dbPath,
	}, db, bs, ss, discardLogger(), nil)

	mock := newMockS3()
	m.client = mock

	id, err := m.RunNow(context.Background(), "test-passphrase")
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := bs.GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", record.Status, model.BackupStatusCompleted)
	}
	if record.SizeBytes == 0 {
		t.Error("expected non-zero backup size")
	}

	// A salt should have been generated and stored for future runs.
	salt, err := ss.Get("backup_passphrase_salt")
	if err != nil {
		t.Fatalf("get salt: %v", err)
	}
	if salt == "" {
		t.Error("expected backup_passphrase_salt to be stored")
	}

	// The uploaded object must decrypt with the original passphrase.
	body, size, err := m.Download(context.Background(), id)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer body.Close()
	if size != record.SizeBytes {
		t.Errorf("download size = %d, want %d", size, record.SizeBytes)
	}
	encrypted, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	plaintext, err := Decrypt(encrypted, "test-passphrase")
	if err != nil {
		t.Fatalf("decrypt download: %v", err)
	}
	if !bytes.Contains(plaintext, []byte("SQLite format 3")) {
		t.Error("decrypted snapshot does not look like a SQLite database")
	}
}

func TestDownloadUnknownBackup(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, db, store.NewBackupStore(db), store.NewSettingsStore(db), discardLogger(), nil)
	m.client = newMockS3()

	if _, _, err := m.Download(context.Background(), 999); err == nil {
		t.Fatal("expected error for unknown backup id")
	}
}
