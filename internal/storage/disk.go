// Пакет storage — дисковое хранилище файлов вложений.
// Файлы лежат в одном каталоге под именами UUID + расширение по MIME-типу.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Ошибки хранилища.
var (
	// ErrTypeNotAllowed — MIME-тип файла не входит в белый список.
	ErrTypeNotAllowed = errors.New("тип файла не разрешён: допустимы JPG, PNG, GIF, WebP, PDF, DOC, DOCX, XLS, XLSX")
	// ErrTooLarge — файл превышает лимит размера.
	ErrTooLarge = errors.New("файл превышает максимальный размер")
	// ErrNotFound — файл отсутствует в хранилище.
	ErrNotFound = errors.New("файл не найден в хранилище")
)

// allowedTypes — белый список MIME-типов и расширения файлов для них.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",

	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
}

// IsAllowedType сообщает, разрешён ли MIME-тип для загрузки.
func IsAllowedType(mimeType string) bool {
	_, ok := allowedTypes[mimeType]
	return ok
}

// ExtensionFor возвращает расширение для MIME-типа, либо пустую строку.
func ExtensionFor(mimeType string) string {
	return allowedTypes[mimeType]
}

// DiskStore — хранилище файлов в локальном каталоге.
type DiskStore struct {
	dir     string
	maxSize int64
}

// NewDiskStore создаёт хранилище, при необходимости создавая каталог.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("создание каталога вложений: %w", err)
	}
	return &DiskStore{dir: dir, maxSize: maxSize}, nil
}

// Dir возвращает каталог хранилища.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Store сохраняет файл и возвращает сгенерированное имя и размер.
// Тип проверяется по белому списку, размер ограничивается при копировании.
func (s *DiskStore) Store(src io.Reader, originalName, mimeType string) (storedName string, size int64, err error) {
	ext, ok := allowedTypes[mimeType]
	if !ok {
		return "", 0, ErrTypeNotAllowed
	}
	if ext == "" {
		ext = filepath.Ext(originalName)
	}
	storedName = uuid.NewString() + ext

	f, err := os.OpenFile(s.path(storedName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("создание файла: %w", err)
	}
	defer f.Close()

	// +1 байт, чтобы отличить ровно лимит от превышения
	size, err = io.Copy(f, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("запись файла: %w", err)
	}
	if size > s.maxSize {
		os.Remove(f.Name())
		return "", 0, ErrTooLarge
	}
	return storedName, size, nil
}

// Open открывает сохранённый файл для чтения.
func (s *DiskStore) Open(storedName string) (*os.File, error) {
	f, err := os.Open(s.path(storedName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("открытие файла: %w", err)
	}
	return f, nil
}

// Remove удаляет файл; отсутствие файла не считается ошибкой.
func (s *DiskStore) Remove(storedName string) error {
	if err := os.Remove(s.path(storedName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("удаление файла: %w", err)
	}
	return nil
}

// path строит путь в каталоге хранилища, отсекая выход наружу.
func (s *DiskStore) path(storedName string) string {
	return filepath.Join(s.dir, filepath.Base(strings.TrimSpace(storedName)))
}
