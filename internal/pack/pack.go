// Package pack bundles a corpus directory into a zip archive.
package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/docstamp/internal/apperr"
)

// Build writes every regular file under root into the zip archive out,
// deflated, in sorted order. Archive names are slash paths prefixed with root
// as given (or its base name when root is absolute). The archive is written
// to a temporary file and renamed into place; a previous archive inside root
// is never packed into itself. It returns the number of files packed.
func Build(root, out string) (int, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return 0, fmt.Errorf("pack: root %s: %w", root, apperr.ErrCorpusMissing)
	}

	files, err := collect(root, out)
	if err != nil {
		return 0, err
	}

	prefix := filepath.ToSlash(filepath.Clean(root))
	if filepath.IsAbs(root) {
		prefix = filepath.Base(filepath.Clean(root))
	}

	dir := filepath.Dir(out)
	tmp, err := os.CreateTemp(dir, ".docstamp-pack-*")
	if err != nil {
		return 0, fmt.Errorf("pack: create temp: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, rel := range files {
		if err := addFile(zw, filepath.Join(root, filepath.FromSlash(rel)), path.Join(prefix, rel)); err != nil {
			return 0, err
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("pack: finish archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("pack: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("pack: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("pack: chmod: %w", err)
	}
	if err := os.Rename(tmpName, out); err != nil {
		return 0, fmt.Errorf("pack: rename: %w", err)
	}
	success = true
	return len(files), nil
}

// collect returns root-relative slash paths of every regular file under root,
// sorted, leaving out the archive itself and stray temp files.
func collect(root, out string) ([]string, error) {
	outAbs, _ := filepath.Abs(out)
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, _ := filepath.Abs(p); abs == outAbs || strings.HasPrefix(d.Name(), ".docstamp-pack-") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pack: walk %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("pack: open %s: %w", src, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("pack: stat %s: %w", src, err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("pack: header %s: %w", src, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("pack: add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("pack: copy %s: %w", name, err)
	}
	return nil
}
