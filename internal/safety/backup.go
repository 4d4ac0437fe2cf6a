package safety

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Backup records one snapshot of an output directory.
type Backup struct {
	ID        string
	SourceDir string
	Dir       string
	CreatedAt time.Time
	Files     int
}

// BackupManager snapshots output directories before they are overwritten.
type BackupManager struct {
	backupDir string
}

// NewBackupManager creates a manager writing snapshots under backupDir.
func NewBackupManager(backupDir string) *BackupManager {
	return &BackupManager{backupDir: backupDir}
}

// CreateDirectoryBackup copies dirPath into a freshly named snapshot
// directory and returns its record.
func (bm *BackupManager) CreateDirectoryBackup(dirPath string) (*Backup, error) {
	backup := &Backup{
		ID:        uuid.New().String(),
		SourceDir: dirPath,
		CreatedAt: time.Now(),
	}
	backup.Dir = filepath.Join(bm.backupDir, backup.ID)

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}
		target := filepath.Join(backup.Dir, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		backup.Files++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("backing up %s: %w", dirPath, err)
	}
	return backup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
