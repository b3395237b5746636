package storage

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_Roundtrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewDiskStore() вернул ошибку: %v", err)
	}

	content := "фиктивное содержимое PDF"
	storedName, size, err := store.Store(strings.NewReader(content), "report.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("Store() вернул ошибку: %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, ожидается %d", size, len(content))
	}
	if filepath.Ext(storedName) != ".pdf" {
		t.Errorf("расширение %q, ожидается .pdf", filepath.Ext(storedName))
	}
	// Имя генерируется, не совпадает с оригинальным
	if storedName == "report.pdf" {
		t.Error("storedName совпадает с оригинальным именем")
	}

	f, err := store.Open(storedName)
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		t.Fatalf("чтение файла: %v", err)
	}
	if string(data) != content {
		t.Errorf("содержимое = %q, ожидается %q", string(data), content)
	}

	if err := store.Remove(storedName); err != nil {
		t.Fatalf("Remove() вернул ошибку: %v", err)
	}
	if _, err := store.Open(storedName); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() после удаления: err = %v, ожидается ErrNotFound", err)
	}
}

func TestStore_TypeNotAllowed(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewDiskStore() вернул ошибку: %v", err)
	}

	_, _, err = store.Store(strings.NewReader("#!/bin/sh"), "run.sh", "application/x-sh")
	if !errors.Is(err, ErrTypeNotAllowed) {
		t.Errorf("err = %v, ожидается ErrTypeNotAllowed", err)
	}
}

func TestStore_TooLarge(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("NewDiskStore() вернул ошибку: %v", err)
	}

	// Ровно лимит — допустимо
	if _, _, err := store.Store(strings.NewReader("0123456789"), "a.png", "image/png"); err != nil {
		t.Errorf("Store() для файла на границе лимита: %v", err)
	}

	// Лимит + 1 байт — отклоняется
	_, _, err = store.Store(strings.NewReader("0123456789X"), "b.png", "image/png")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, ожидается ErrTooLarge", err)
	}
}

func TestRemove_MissingFile(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewDiskStore() вернул ошибку: %v", err)
	}
	// Отсутствие файла не считается ошибкой
	if err := store.Remove("nonexistent.pdf"); err != nil {
		t.Errorf("Remove() для отсутствующего файла: %v", err)
	}
}

func TestIsAllowedType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"image/webp", true},
		{"application/pdf", true},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"text/html", false},
		{"application/x-sh", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := IsAllowedType(tt.mimeType); got != tt.want {
				t.Errorf("IsAllowedType(%q) = %v, ожидается %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestExtensionFor(t *testing.T) {
	if got := ExtensionFor("image/png"); got != ".png" {
		t.Errorf("ExtensionFor(image/png) = %q, ожидается .png", got)
	}
	if got := ExtensionFor("text/html"); got != "" {
		t.Errorf("ExtensionFor(text/html) = %q, ожидается пустая строка", got)
	}
}
