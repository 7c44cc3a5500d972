// Package ops holds operator tooling: packing save databases and
// catalog files into portable archives and unpacking them again.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveSaves packs the given files into a gzipped tar at archivePath.
// Entries are stored flat under their base names; duplicates are
// rejected rather than silently overwritten on extract.
func ArchiveSaves(paths []string, archivePath string) error {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" {
		return fmt.Errorf("archive path is required")
	}
	if len(paths) == 0 {
		return fmt.Errorf("nothing to archive")
	}
	seen := map[string]string{}
	for _, p := range paths {
		base := filepath.Base(filepath.Clean(p))
		if prev, dup := seen[base]; dup {
			return fmt.Errorf("duplicate archive entry %q (%s and %s)", base, prev, p)
		}
		seen[base] = p
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	for _, p := range paths {
		if err := addFile(tw, p); err != nil {
			return err
		}
	}
	return nil
}

func addFile(tw *tar.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("cannot archive directory %s", path)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(tw, src)
	return err
}

// ExtractSaves unpacks an archive into targetDir. Entry names are
// sanitized; anything absolute or escaping the target is rejected.
func ExtractSaves(archivePath, targetDir string) error {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return fmt.Errorf("archive path and target directory are required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		rel, err := sanitizeEntryName(hdr.Name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(targetDir, rel)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		dst, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, tr); err != nil {
			dst.Close()
			return err
		}
		if err := dst.Close(); err != nil {
			return err
		}
	}
}

func sanitizeEntryName(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute archive entry name: %s", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes target: %s", name)
	}
	return name, nil
}
