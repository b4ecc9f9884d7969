// Package sessionstore persists the client state and the cookie jar of the scraper
// between runs as two gob files.
package sessionstore

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"corepool-exporter/internal/components/assert"
	"corepool-exporter/internal/corepool"
)

// ErrNotFound is returned by a load when nothing was persisted yet.
var ErrNotFound = corepool.ErrNotFound

// PersistenceError is any failure to read, decode, encode or write a persisted file
// other than the file not existing.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err.Error())
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store keeps the client state and the cookies in separate files, so the session can
// be refreshed without passing the challenge again.
type Store struct {
	clientPath  string
	cookiesPath string
}

var _ corepool.SessionStore = Store{}

func New(clientPath, cookiesPath string) Store {
	assert.NotEmptyStr(clientPath, "clientPath")
	assert.NotEmptyStr(cookiesPath, "cookiesPath")
	return Store{clientPath: clientPath, cookiesPath: cookiesPath}
}

func (s Store) ClientPath() string {
	return s.clientPath
}

func (s Store) CookiesPath() string {
	return s.cookiesPath
}

func (s Store) LoadClient() (corepool.ClientState, error) {
	var state corepool.ClientState
	err := load(s.clientPath, &state)
	return state, err
}

func (s Store) SaveClient(state corepool.ClientState) error {
	return save(s.clientPath, state)
}

func (s Store) LoadCookies() (corepool.CookieJar, error) {
	var jar corepool.CookieJar
	err := load(s.cookiesPath, &jar)
	if err != nil {
		return nil, err
	}
	if jar == nil {
		jar = corepool.CookieJar{}
	}
	return jar, nil
}

func (s Store) SaveCookies(jar corepool.CookieJar) error {
	return save(s.cookiesPath, jar)
}

// Reset removes both files, files that do not exist are not an error.
func (s Store) Reset() error {
	var errs []error
	for _, path := range []string{s.clientPath, s.cookiesPath} {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, &PersistenceError{Op: "remove", Path: path, Err: err})
		}
	}
	return errors.Join(errs...)
}

func load(path string, out any) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return &PersistenceError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	err = gob.NewDecoder(file).Decode(out)
	if err != nil {
		return &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	return nil
}

// save writes to a temporary file next to path and renames it over path, a crash never
// leaves a half written file behind.
func save(path string, value any) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return &PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "create", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	err = gob.NewEncoder(tmp).Encode(value)
	if err != nil {
		tmp.Close()
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}
	err = tmp.Close()
	if err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
