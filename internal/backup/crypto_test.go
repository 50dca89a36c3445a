package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}

	original := []byte("ledger snapshot with account balances in it")
	encrypted, err := Encrypt(original, "test-passphrase-123", salt)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if bytes.Equal(encrypted, original) {
		t.Error("encrypted content should differ from original")
	}
	if !bytes.Equal(encrypted[:saltSize], salt) {
		t.Error("encrypted data should start with salt")
	}

	decrypted, err := Decrypt(encrypted, "test-passphrase-123")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(original, decrypted) {
		t.Error("decrypted content should match original")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	salt, _ := GenerateSalt()
	encrypted, err := Encrypt([]byte("secret data"), "correct-password", salt)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := Decrypt(encrypted, "wrong-password"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	salt, _ := GenerateSalt()
	encrypted, err := Encrypt([]byte("secret data"), "password", salt)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	encrypted[saltSize+nonceSize+1] ^= 0xFF

	if _, err := Decrypt(encrypted, "password"); err == nil {
		t.Fatal("expected error with tampered ciphertext")
	}
}

func TestDecryptTooSmall(t *testing.T) {
	if _, err := Decrypt([]byte("too short"), "password"); err == nil {
		t.Fatal("expected error with data too small")
	}
}

func TestEncryptDecryptFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	encPath := filepath.Join(dir, "encrypted.db.enc")
	decPath := filepath.Join(dir, "decrypted.db")

	original := []byte("This is test database content with some data in it.")
	if err := os.WriteFile(srcPath, original, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}

	if err := EncryptFile(srcPath, encPath, "test-passphrase-123", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := DecryptFile(encPath, decPath, "test-passphrase-123"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	decrypted, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !bytes.Equal(original, decrypted) {
		t.Error("decrypted content should match original")
	}
}
