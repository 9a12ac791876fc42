package hashutil

import (
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/wfpack/pkg/types"
	"github.com/zeebo/blake3"
)

// Prefix tags every checksum with the algorithm that produced it
const Prefix = "blake3:"

// CalculateFileChecksum calculates the BLAKE3 checksum of a file
func CalculateFileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := blake3.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%x", Prefix, hash.Sum(nil)), nil
}

// TreeFingerprint hashes every path, mode, symlink target and file content
// below root. Symlinks are recorded, not followed. A missing root yields an
// empty fingerprint and no error.
func TreeFingerprint(fsys types.FS, root string) (string, error) {
	info, err := fsys.Lstat(root)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	hash := blake3.New()
	if err := hashNode(fsys, hash, root, ".", info); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", Prefix, hash.Sum(nil)), nil
}

func hashNode(fsys types.FS, w io.Writer, path, rel string, info fs.FileInfo) error {
	writeField(w, []byte(filepath.ToSlash(rel)))
	writeField(w, []byte(info.Mode().String()))

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := fsys.Readlink(path)
		if err != nil {
			return err
		}
		writeField(w, []byte(target))

	case info.IsDir():
		entries, err := fsys.ReadDir(path)
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})
		for _, entry := range entries {
			childPath := filepath.Join(path, entry.Name())
			childInfo, err := fsys.Lstat(childPath)
			if err != nil {
				return err
			}
			if err := hashNode(fsys, w, childPath, filepath.Join(rel, entry.Name()), childInfo); err != nil {
				return err
			}
		}

	default:
		data, err := fsys.ReadFile(path)
		if err != nil {
			return err
		}
		writeField(w, data)
	}
	return nil
}

// writeField length-prefixes b so adjacent fields cannot run together
func writeField(w io.Writer, b []byte) {
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(b)))
	_, _ = w.Write(size[:])
	_, _ = w.Write(b)
}
