package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// FileTree represents a nested file structure for declarative test setup.
// Values are either string (file content) or FileTree (directory).
type FileTree map[string]interface{}

// DefaultPayload is a framework directory holding every default manifest entry
func DefaultPayload() FileTree {
	return FileTree{
		".windsurf": FileTree{
			"workflows": FileTree{
				"plan.md":   "# plan\n",
				"review.md": "# review\n",
			},
		},
		".githooks": FileTree{
			"pre-commit": "#!/bin/sh\nexit 0\n",
		},
		"docs": FileTree{
			"workflow-pack": FileTree{
				"guide.md": "# guide\n",
			},
		},
		"INSTALL.md": "# Installing\n",
	}
}

// Layout is a host project on the real filesystem with a framework
// directory nested somewhere below it
type Layout struct {
	// Root is the resolved temporary directory holding the project
	Root string

	ProjectRoot  string
	FrameworkDir string

	t *testing.T
}

// NewLayout creates ProjectRoot at Root/project and the framework directory at
// ProjectRoot/frameworkRel, filled with payload. Hooks in payload are made
// executable.
func NewLayout(t *testing.T, frameworkRel string, payload FileTree) *Layout {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	l := &Layout{
		Root:         root,
		ProjectRoot:  filepath.Join(root, "project"),
		FrameworkDir: filepath.Join(root, "project", frameworkRel),
		t:            t,
	}

	CreateDir(t, l.FrameworkDir, "")
	WriteTree(t, l.FrameworkDir, payload)

	hooks := filepath.Join(l.FrameworkDir, ".githooks")
	if entries, err := os.ReadDir(hooks); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				Chmod(t, filepath.Join(hooks, entry.Name()), 0755)
			}
		}
	}

	return l
}

// WithGitRepo gives the project a .git directory with some content
func (l *Layout) WithGitRepo() *Layout {
	l.t.Helper()
	WriteTree(l.t, l.ProjectRoot, FileTree{
		".git": FileTree{
			"HEAD":   "ref: refs/heads/main\n",
			"config": "[core]\n\tbare = false\n",
			"hooks": FileTree{
				"pre-commit.sample": "#!/bin/sh\n",
			},
			"refs": FileTree{
				"heads": FileTree{"main": "0123456789abcdef\n"},
			},
		},
	})
	return l
}

// Project returns a path below the project root
func (l *Layout) Project(rel ...string) string {
	return filepath.Join(append([]string{l.ProjectRoot}, rel...)...)
}

// Framework returns a path below the framework directory
func (l *Layout) Framework(rel ...string) string {
	return filepath.Join(append([]string{l.FrameworkDir}, rel...)...)
}

// WriteTree creates tree below base on the real filesystem
func WriteTree(t *testing.T, base string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(base, name)

		switch v := content.(type) {
		case string:
			CreateFile(t, base, name, v)
		case FileTree:
			CreateDir(t, base, name)
			WriteTree(t, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// Snapshot maps every path below root (slash separated, relative) to its
// content. Directories map to "/" and symlinks to "-> target".
func Snapshot(t *testing.T, root string) map[string]string {
	t.Helper()

	snap := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			snap[rel] = "-> " + target
		case info.IsDir():
			snap[rel] = "/"
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			snap[rel] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot %s: %v", root, err)
	}
	return snap
}

// Symlinks lists every symlink below root, sorted
func Symlinks(t *testing.T, root string) []string {
	t.Helper()

	var links []string
	for rel, value := range Snapshot(t, root) {
		if len(value) > 3 && value[:3] == "-> " {
			links = append(links, rel)
		}
	}
	sort.Strings(links)
	return links
}
