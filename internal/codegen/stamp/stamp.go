// Package stamp records a digest of a pipeline run's inputs so an unchanged
// tree can skip regeneration.
package stamp

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
)

// FileName is the stamp file name inside the output directory.
const FileName = ".tglgen-stamp"

// Hasher accumulates labelled inputs into a BLAKE2b-256 digest.
type Hasher struct {
	buf bytes.Buffer
	err error
}

// AddString mixes a labelled setting into the digest.
func (h *Hasher) AddString(label, value string) {
	fmt.Fprintf(&h.buf, "%s=%d:%s\n", label, len(value), value)
}

// AddFile mixes the content of path into the digest.
func (h *Hasher) AddFile(label, path string) {
	if h.err != nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		h.err = &errs.IOError{Op: "open", Path: path, Err: err}
		return
	}
	defer f.Close()

	sum, err := blake2b.New256(nil)
	if err != nil {
		h.err = err
		return
	}
	if _, err := io.Copy(sum, f); err != nil {
		h.err = &errs.IOError{Op: "read", Path: path, Err: err}
		return
	}
	h.AddString(label, hex.EncodeToString(sum.Sum(nil)))
}

// Sum returns the hex digest of everything added, or the first file error.
func (h *Hasher) Sum() (string, error) {
	if h.err != nil {
		return "", h.err
	}
	sum := blake2b.Sum256(h.buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Read returns the digest stored at path, or "" if there is none.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", &errs.IOError{Op: "read", Path: path, Err: err}
	}
	return strings.TrimSpace(string(data)), nil
}

// Write stores digest at path.
func Write(path, digest string) error {
	if err := os.WriteFile(path, []byte(digest+"\n"), 0o644); err != nil {
		return &errs.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Remove deletes the stamp at path. A missing stamp is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &errs.IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// UpToDate reports whether the stamp at path equals digest and every output
// exists.
func UpToDate(path, digest string, outputs []string) (bool, error) {
	stored, err := Read(path)
	if err != nil || stored == "" || stored != digest {
		return false, err
	}
	for _, out := range outputs {
		if _, err := os.Stat(out); err != nil {
			return false, nil
		}
	}
	return true, nil
}
