package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/logger"
)

const profileDir = "profiles"

// PhotoStorage хранит фотографии профилей на локальном диске.
type PhotoStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

func (s *PhotoStorage) Root() string {
	return s.rootPath
}

// SaveProfilePhoto сохраняет фото пользователя и возвращает путь относительно корня хранилища.
// ext передаётся уже проверенным (jpg, png, webp).
func (s *PhotoStorage) SaveProfilePhoto(ctx context.Context, userID string, ext string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	owner := sanitizeSegment(userID)
	if owner == "" {
		return "", 0, fmt.Errorf("storage: пустой идентификатор пользователя")
	}
	ext = strings.TrimPrefix(sanitizeSegment(strings.ToLower(ext)), ".")
	if ext == "" {
		ext = "bin"
	}

	fileName := fmt.Sprintf("%d.%s", time.Now().UnixNano(), ext)
	userDir := filepath.Join(s.rootPath, profileDir, owner)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	relative := filepath.ToSlash(filepath.Join(profileDir, owner, fileName))
	logger.WithFields(logrus.Fields{
		"user_id": userID,
		"path":    relative,
		"size":    written,
	}).Debug("storage: фото сохранено")
	return relative, written, nil
}

// Delete удаляет файл; отсутствие файла ошибкой не считается.
func (s *PhotoStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.resolve(relativePath)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// resolve не даёт выйти за пределы корня хранилища: ".." срезаются относительно корня.
func (s *PhotoStorage) resolve(relativePath string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(relativePath))
	return filepath.Join(s.rootPath, clean)
}

// sanitizeSegment оставляет в сегменте пути только безопасные символы.
func sanitizeSegment(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}
