package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("file is too large")
)

// ImageStore абстрагирует хранилище загруженных картинок, чтобы сервис
// каталога можно было тестировать с фейком.
type ImageStore interface {
	// Save проверяет и сохраняет файл, возвращает имя в хранилище.
	Save(file io.Reader, originalName string, size int64) (string, error)
	// Remove удаляет файл; отсутствие файла ошибкой не считается.
	Remove(name string) error
}

// DiskStore хранит картинки в одном каталоге на диске.
type DiskStore struct {
	dir     string
	maxSize int64
}

func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir, maxSize: maxSize}, nil
}

// Save принимает только image/* (по сигнатуре содержимого, не по расширению)
// и пишет файл под устойчивым к коллизиям именем: метка времени плюс
// случайный суффикс, параллельные загрузки не пересекаются.
func (s *DiskStore) Save(file io.Reader, originalName string, size int64) (string, error) {
	if size > s.maxSize {
		return "", ErrTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	head = head[:n]

	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return "", ErrNotImage
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), ext)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), file)); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return name, nil
}

func (s *DiskStore) Remove(name string) error {
	// Base отсекает попытки выйти из каталога загрузок
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
