package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var errNotRegular = errors.New("source is not a regular file")

// copyFile copies a regular file and carries the source permissions over.
func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", src, errNotRegular)
	}

	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer source.Close()

	target, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err = io.Copy(target, source); err != nil {
		target.Close()

		return fmt.Errorf("copy %s: %w", src, err)
	}

	if err = target.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}

	// Chmod after the fact so the umask cannot strip mode bits.
	if err = os.Chmod(dest, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", dest, err)
	}

	return nil
}

// copyTree replicates a directory tree. Symbolic links are recreated as
// links rather than followed, which keeps shared library aliases intact.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relative, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dest, relative)

		switch {
		case entry.IsDir():
			info, infoErr := entry.Info()
			if infoErr != nil {
				return infoErr
			}

			return os.MkdirAll(target, info.Mode().Perm())
		case entry.Type()&fs.ModeSymlink != 0:
			destination, linkErr := os.Readlink(path)
			if linkErr != nil {
				return linkErr
			}

			return os.Symlink(destination, target)
		default:
			return copyFile(path, target)
		}
	})
}
