package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"expense-tracker-go/internal/model"
	"expense-tracker-go/pkg/logger"
)

const (
	BackupVersion = "1.0.0"
	backupPrefix  = "expense-tracker-backup-"
	backupExt     = ".json"
)

var (
	ErrInvalidBackup  = errors.New("invalid backup data")
	ErrBackupNotFound = errors.New("backup not found")
)

// Backup is the on-disk document.
type Backup struct {
	Expenses   []model.Expense  `json:"expenses"`
	Categories []model.Category `json:"categories"`
	BackupDate string           `json:"backupDate"`
	Version    string           `json:"version"`
}

// backupFile distinguishes a missing array from an empty one.
type backupFile struct {
	Expenses   *[]model.Expense  `json:"expenses"`
	Categories *[]model.Category `json:"categories"`
	BackupDate string            `json:"backupDate"`
	Version    string            `json:"version"`
}

type BackupInfo struct {
	Name    string
	Path    string
	Date    string
	Size    int64
	ModTime time.Time
}

type BackupStore interface {
	Expenses(ctx context.Context) ([]model.Expense, error)
	Categories(ctx context.Context) ([]model.Category, bool, error)
	ReplaceAll(ctx context.Context, expenses []model.Expense, categories []model.Category) error
}

type Manager struct {
	dir   string
	store BackupStore
	log   logger.Logger
	now   func() time.Time
}

func NewManager(dir string, store BackupStore, log logger.Logger) *Manager {
	return &Manager{dir: dir, store: store, log: log, now: time.Now}
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes both collections to the backup of the current UTC day,
// replacing an earlier backup from the same day. It returns the file path.
func (m *Manager) Create(ctx context.Context) (string, error) {
	expenses, err := m.store.Expenses(ctx)
	if err != nil {
		return "", fmt.Errorf("read expenses: %w", err)
	}
	categories, _, err := m.store.Categories(ctx)
	if err != nil {
		return "", fmt.Errorf("read categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}

	now := m.now().UTC()
	doc := Backup{
		Expenses:   expenses,
		Categories: categories,
		BackupDate: now.Format("2006-01-02T15:04:05.000Z07:00"),
		Version:    BackupVersion,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	path := filepath.Join(m.dir, backupPrefix+now.Format("2006-01-02")+backupExt)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	m.log.Info("backup.create: backup written", "path", path, "expenses", len(expenses), "categories", len(categories))
	return path, nil
}

// List returns the JSON files of the backup directory, newest first. A missing
// directory yields an empty list.
func (m *Manager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(m.dir, entry.Name()),
			Date:    strings.TrimSuffix(strings.TrimPrefix(entry.Name(), backupPrefix), backupExt),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

// Restore replaces both local collections with the backup's content. Files
// missing either array are rejected without touching the store.
func (m *Manager) Restore(ctx context.Context, nameOrPath string) (Backup, error) {
	path := m.resolve(nameOrPath)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Backup{}, ErrBackupNotFound
	}
	if err != nil {
		return Backup{}, fmt.Errorf("read backup: %w", err)
	}

	var doc backupFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if doc.Expenses == nil || doc.Categories == nil {
		return Backup{}, ErrInvalidBackup
	}

	restored := Backup{
		Expenses:   *doc.Expenses,
		Categories: *doc.Categories,
		BackupDate: doc.BackupDate,
		Version:    doc.Version,
	}
	if err := m.store.ReplaceAll(ctx, restored.Expenses, restored.Categories); err != nil {
		return Backup{}, fmt.Errorf("restore collections: %w", err)
	}

	m.log.Info("backup.restore: backup restored", "path", path, "expenses", len(restored.Expenses), "categories", len(restored.Categories))
	return restored, nil
}

func (m *Manager) Delete(nameOrPath string) error {
	path := m.resolve(nameOrPath)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("delete backup: %w", err)
	}
	m.log.Info("backup.delete: backup removed", "path", path)
	return nil
}

// resolve treats bare file names as relative to the backup directory.
func (m *Manager) resolve(nameOrPath string) string {
	if filepath.Base(nameOrPath) == nameOrPath {
		return filepath.Join(m.dir, nameOrPath)
	}
	return nameOrPath
}
