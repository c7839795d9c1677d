package telegram

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gotd/td/session"
)

// NewFileSessionStorage creates file-backed session storage under dir.
// The file name is derived from a hash of the phone number so the
// number itself never appears on disk.
func NewFileSessionStorage(dir, phone string) (*session.FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	sum := sha256.Sum256([]byte(phone))
	name := hex.EncodeToString(sum[:])[:16] + ".json"

	return &session.FileStorage{
		Path: filepath.Join(dir, name),
	}, nil
}
