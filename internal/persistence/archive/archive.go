// Package archive writes zstd-compressed JSON backups of the label
// map. A backup is taken before every destructive full rewrite
// (reset, import) so labelctl can restore an earlier state.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"bricklabels.dev/internal/label"
)

const suffix = ".json.zst"

// Write stores a backup of labels under dir and returns its path.
func Write(dir string, labels map[string]label.Label) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("labels-%s%s", time.Now().UTC().Format("2006-01-02_15-04-05.000"), suffix)
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", err
	}
	defer enc.Close()

	if err := json.NewEncoder(enc).Encode(labels); err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return path, nil
}

// Read loads a backup written by Write.
func Read(path string) (map[string]label.Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	m := make(map[string]label.Label)
	if err := json.NewDecoder(dec).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return m, nil
}

// List returns backup paths under dir, newest last.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
