package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File хранит все значения в одном JSON-файле. Файл целиком перечитывается
// при открытии и атомарно переписывается при каждой мутации. Отсутствующий
// или повреждённый файл трактуется как пустое хранилище.
type File struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// NewFile открывает файловое хранилище по указанному пути.
func NewFile(path string) *File {
	f := &File{
		path:   path,
		values: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return f
	}

	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		return f
	}
	f.values = values

	return f
}

// Get возвращает значение по ключу.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.values[key]
	return v, ok, nil
}

// Set записывает значение по ключу и сохраняет файл.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	return f.flush()
}

// Delete удаляет значение по ключу и сохраняет файл.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.flush()
}

// Close для файлового хранилища ничего не делает: каждая мутация уже сохранена.
func (f *File) Close() error { return nil }

func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage file: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".autoservice-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace storage file: %w", err)
	}

	return nil
}
