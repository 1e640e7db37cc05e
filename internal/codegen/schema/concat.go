// Package schema merges the protocol schema fragments into the single source
// file consumed by the schema compiler.
package schema

import (
	"io"
	"os"
	"path/filepath"

	"github.com/tgl-library/tglgen/internal/codegen/errs"
)

// Concatenate writes the bytes of every fragment, in order, to dest. Nothing is
// inserted between fragments. The output is staged next to dest and renamed
// into place only after all fragments were copied, so a failure leaves dest
// untouched.
func Concatenate(fragments []string, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return &errs.IOError{Op: "create", Path: dest, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	for _, fragment := range fragments {
		if err := appendFragment(tmp, fragment); err != nil {
			return err
		}
	}

	if err := tmp.Close(); err != nil {
		return &errs.IOError{Op: "write", Path: dest, Err: err}
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return &errs.IOError{Op: "rename", Path: dest, Err: err}
	}
	committed = true
	return nil
}

func appendFragment(w io.Writer, fragment string) error {
	f, err := os.Open(fragment)
	if err != nil {
		return &errs.IOError{Op: "open", Path: fragment, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return &errs.IOError{Op: "read", Path: fragment, Err: err}
	}
	return nil
}

// DefaultFragments returns the schema fragments of a source tree in
// declaration dependency order.
func DefaultFragments(srcDir string) []string {
	names := []string{"scheme.tl", "encrypted_scheme.tl", "mtproto.tl", "append.tl"}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, filepath.Join(srcDir, "auto", n))
	}
	return out
}
