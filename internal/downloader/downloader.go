package downloader

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caedis/factorio-mod-downloader/internal/logging"
	"github.com/spf13/afero"
)

// IntegrityError is a checksum mismatch between downloaded bytes and the
// checksum the portal declared for the release.
type IntegrityError struct {
	Mod        string
	Calculated string
	Expected   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("SHA1 check failed: %s: Calculated=%s Expected=%s", e.Mod, e.Calculated, e.Expected)
}

// SHA1 returns the lowercase hex SHA-1 of data.
func SHA1(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Verify checks data against the expected hex digest. Comparison ignores case.
func Verify(mod string, data []byte, expected string) error {
	calculated := SHA1(data)
	if !strings.EqualFold(calculated, strings.TrimSpace(expected)) {
		return &IntegrityError{Mod: mod, Calculated: calculated, Expected: expected}
	}
	return nil
}

// ValidateFilename rejects names that would escape the output directory.
func ValidateFilename(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("empty file name")
	case name == "." || name == "..":
		return fmt.Errorf("invalid file name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("file name %q contains a path separator", name)
	}
	return nil
}

// EnsureDir creates dir if it does not exist.
func EnsureDir(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// Store writes data to destDir/filename through a temp file and rename, so a
// failed write never leaves a partial file under the final name. An existing
// file is replaced.
func Store(fs afero.Fs, destDir, filename string, data []byte) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	destPath := filepath.Join(destDir, filename)
	tmpPath := destPath + ".tmp"
	logging.Debugf("Verbose: storing file=%s bytes=%d\n", destPath, len(data))

	f, err := fs.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filename, err)
	}

	_, err = f.Write(data)
	closeErr := f.Close()
	if err != nil {
		_ = fs.Remove(tmpPath)
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	if closeErr != nil {
		_ = fs.Remove(tmpPath)
		return "", fmt.Errorf("closing %s: %w", filename, closeErr)
	}

	if err := fs.Rename(tmpPath, destPath); err != nil {
		_ = fs.Remove(tmpPath)
		return "", fmt.Errorf("finalizing %s: %w", filename, err)
	}
	return destPath, nil
}

// UpToDate reports whether destDir/filename exists and hashes to expected.
func UpToDate(fs afero.Fs, destDir, filename, expected string) (bool, error) {
	if err := ValidateFilename(filename); err != nil {
		return false, err
	}
	f, err := fs.Open(filepath.Join(destDir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, fmt.Errorf("hashing %s: %w", filename, err)
	}
	return strings.EqualFold(hex.EncodeToString(h.Sum(nil)), strings.TrimSpace(expected)), nil
}
