// Package configutil reads json5 configuration files with local overrides.
package configutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the override file for name, "corepool.json5" becomes
// "corepool.local.json5".
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// ReadConfig reads the json5 file name, then merges LocalPath(name) over it. Fields set
// in the local file win, fields it leaves out keep the value of the main file.
//
// os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found := false

	for _, path := range []string{name, LocalPath(name)} {
		layer, ok, err := readLayer[T](path)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		if found {
			slog.Info("merging config with local overrides", "local", path)
		}
		err = Override(&out, layer)
		if err != nil {
			return out, fmt.Errorf("merge %s: %w", path, err)
		}
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

func readLayer[T any](path string) (T, bool, error) {
	var layer T
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return layer, false, nil
	}
	if err != nil {
		return layer, false, err
	}
	if len(contents) == 0 {
		return layer, false, nil
	}
	err = json5.Unmarshal(contents, &layer)
	if err != nil {
		return layer, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return layer, true, nil
}

// Override copies every non-zero field of override onto dst.
func Override[T any](dst *T, override T) error {
	return mergo.Merge(dst, override, mergo.WithOverride)
}

// Defaults fills every zero field of dst from defaults.
func Defaults[T any](dst *T, defaults T) error {
	return mergo.Merge(dst, defaults)
}
