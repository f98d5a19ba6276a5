// Package filecache mirrors file bytes on local disk under a single root.
//
// An entry is a regular file named exactly after the file's name. Its
// existence is the only signal that data is available locally. Writes go to a
// temp file inside the root and are renamed into place, so a reader never
// observes a partially written entry under its final name.
package filecache

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filexfer/filestate"
)

const (
	// CodeIOFailure marks local disk read/write/rename failures.
	CodeIOFailure = "IO_FAILURE"

	// CodeCacheDisabled is returned by writes on a store without a root.
	CodeCacheDisabled = "CACHE_DISABLED"

	tempPattern = ".filexfer-*"
	copyBufSize = 32 * 1024
	dirPerm     = 0o755
)

// Store maps file states to paths under root.
// The zero root disables caching: lookups miss and writes are rejected.
type Store struct {
	root string
}

// New creates a store rooted at root, creating the directory when needed.
// An empty root returns a disabled store.
func New(root string) (*Store, error) {
	if root == "" {
		return &Store{}, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}

	if err = os.MkdirAll(abs, dirPerm); err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}

	return &Store{root: abs}, nil
}

// Enabled reports whether the store has a root.
func (s *Store) Enabled() bool {
	return s != nil && s.root != ""
}

// Root returns the absolute cache root, or "" when disabled.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// CacheFile returns root/name for the state. No I/O is performed.
func (s *Store) CacheFile(state filestate.State) string {
	if !s.Enabled() {
		return ""
	}
	return filepath.Join(s.root, state.Name())
}

// IsDataAvailable reports whether the cache file exists right now.
// The answer may be stale as soon as it is returned.
func (s *Store) IsDataAvailable(state filestate.State) bool {
	if !s.Enabled() || state.Name() == "" {
		return false
	}
	info, err := os.Stat(s.CacheFile(state))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Clear removes every entry directly under the root.
// A missing or empty root is not an error.
func (s *Store) Clear() error {
	if !s.Enabled() {
		return nil
	}

	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}

	for _, entry := range entries {
		if err = os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return errx.Wrap(err, errx.WithCode(CodeIOFailure))
		}
	}
	return nil
}

// Remove deletes the entry for state. A missing entry is not an error.
func (s *Store) Remove(state filestate.State) error {
	if !s.Enabled() {
		return nil
	}
	err := os.Remove(s.CacheFile(state))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}
	return nil
}

// Install streams r into the cache entry for state and returns its path and
// the number of bytes written. progress, when set, receives the cumulative
// byte count after every chunk.
func (s *Store) Install(
	ctx context.Context,
	state filestate.State,
	r io.Reader,
	progress func(written int64),
) (string, int64, error) {
	if !s.Enabled() {
		return "", 0, errx.New("cache root is not configured", errx.WithCode(CodeCacheDisabled))
	}
	if !isEntryName(state.Name()) {
		return "", 0, errx.New("invalid cache entry name",
			errx.WithCode(CodeIOFailure),
			errx.WithDetails(errx.D{"name": state.Name()}),
		)
	}

	tempName, written, err := WriteTemp(ctx, s.root, r, progress)
	if err != nil {
		return "", written, err
	}

	target := s.CacheFile(state)
	if err = os.Rename(tempName, target); err != nil {
		_ = os.Remove(tempName)
		return "", written, errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}

	return target, written, nil
}

// WriteTemp copies r into a new temp file under dir and returns its name.
// An empty dir uses the OS temp directory. On any failure, including context
// cancellation, the temp file is removed.
func WriteTemp(
	ctx context.Context,
	dir string,
	r io.Reader,
	progress func(written int64),
) (string, int64, error) {
	tempFile, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", 0, errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}
	tempName := tempFile.Name()

	written, err := copyWithContext(ctx, tempFile, r, progress)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempName)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", written, ctxErr
		}
		return "", written, errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}

	return tempName, written, nil
}

// isEntryName reports whether name addresses a file directly under the root.
func isEntryName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, progress func(int64)) (int64, error) {
	var copied int64
	buf := make([]byte, copyBufSize)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
			if progress != nil {
				progress(copied)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
