// Package file хранит снапшот состояния в JSON-файле на диске.
// Запись атомарна: данные пишутся во временный файл в том же каталоге,
// сбрасываются на диск и переименовываются поверх основного файла.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Store — файловое хранилище снапшота.
type Store struct {
	path string
}

// New создаёт файловое хранилище. Каталог создаётся при необходимости.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога данных: %w", err)
	}
	return &Store{path: path}, nil
}

// Path возвращает путь к файлу снапшота.
func (s *Store) Path() string {
	return s.path
}

// Load читает файл. Если файла нет — возвращает nil, nil.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", s.path, err)
	}
	return data, nil
}

// Save атомарно заменяет содержимое файла.
// При любой ошибке прежний файл остаётся нетронутым.
func (s *Store) Save(ctx context.Context, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("ошибка записи: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("ошибка fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("ошибка переименования: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir сбрасывает на диск запись каталога после rename.
// Не на всех платформах каталог можно открыть для fsync, поэтому ошибка только логируется.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Debug("Не удалось открыть каталог для fsync")
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		log.WithError(err).WithField("dir", dir).Debug("fsync каталога не удался")
	}
}
