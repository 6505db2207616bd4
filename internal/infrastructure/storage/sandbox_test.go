package storage

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSandbox(t *testing.T, maxFileSize int64) *SandboxStore {
	t.Helper()
	store, err := NewSandboxStore(&config.WorkspaceConfig{
		Root:        t.TempDir(),
		MaxFileSize: maxFileSize,
	})
	require.NoError(t, err)
	return store
}

func TestNewSandboxStore(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewSandboxStore(nil)
		require.Error(t, err)
	})

	t.Run("empty root returns error", func(t *testing.T) {
		_, err := NewSandboxStore(&config.WorkspaceConfig{})
		require.Error(t, err)
	})

	t.Run("creates workspace root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "workspaces")
		store, err := NewSandboxStore(&config.WorkspaceConfig{Root: root})
		require.NoError(t, err)

		info, err := os.Stat(store.Root())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestSandboxStore_WriteAndRead(t *testing.T) {
	store := newTestSandbox(t, 0)

	t.Run("round-trips file contents", func(t *testing.T) {
		err := store.WriteFile("proj-1", "src/main.py", []byte("print('hi')"))
		require.NoError(t, err)

		data, err := store.ReadFile("proj-1", "src/main.py")
		require.NoError(t, err)
		assert.Equal(t, []byte("print('hi')"), data)
	})

	t.Run("creates parent directories", func(t *testing.T) {
		err := store.WriteFile("proj-1", "a/b/c/deep.txt", []byte("deep"))
		require.NoError(t, err)

		data, err := store.ReadFile("proj-1", "a/b/c/deep.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("deep"), data)
	})

	t.Run("missing file returns not found", func(t *testing.T) {
		_, err := store.ReadFile("proj-1", "nope.txt")
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("projects are isolated from each other", func(t *testing.T) {
		require.NoError(t, store.WriteFile("proj-a", "shared.txt", []byte("a")))

		_, err := store.ReadFile("proj-b", "shared.txt")
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestSandboxStore_PathTraversal(t *testing.T) {
	store := newTestSandbox(t, 0)

	traversals := []string{
		"../outside.txt",
		"../../etc/passwd",
		"a/../../outside.txt",
		"..",
	}

	for _, p := range traversals {
		t.Run("write rejects "+p, func(t *testing.T) {
			err := store.WriteFile("proj-1", p, []byte("x"))
			// Clean("/"+p) confines these inside the sandbox or they
			// are rejected outright; either way nothing may land outside.
			if err == nil {
				entries, lerr := store.ListFiles("proj-1")
				require.NoError(t, lerr)
				for _, e := range entries {
					assert.NotContains(t, e.Path, "..")
				}
			} else {
				assert.Equal(t, shared.ErrPathOutsideRoot, err)
			}
		})
	}

	t.Run("rejects sandbox names containing separators", func(t *testing.T) {
		err := store.WriteFile("../escape", "file.txt", []byte("x"))
		assert.Equal(t, shared.ErrPathOutsideRoot, err)

		err = store.WriteFile("", "file.txt", []byte("x"))
		assert.Equal(t, shared.ErrPathOutsideRoot, err)
	})

	t.Run("nothing escapes the workspace root", func(t *testing.T) {
		outside := filepath.Join(store.Root(), "..", "outside.txt")
		_, err := os.Stat(outside)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestSandboxStore_SymlinksRejected(t *testing.T) {
	store := newTestSandbox(t, 0)

	secret := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("outside"), 0o644))

	dir, err := store.ProjectDir("proj-1")
	require.NoError(t, err)

	t.Run("symlinked file cannot be read", func(t *testing.T) {
		require.NoError(t, os.Symlink(secret, filepath.Join(dir, "link.txt")))

		_, err := store.ReadFile("proj-1", "link.txt")
		assert.Equal(t, shared.ErrPathOutsideRoot, err)
	})

	t.Run("write through symlinked directory is rejected", func(t *testing.T) {
		escape := t.TempDir()
		require.NoError(t, os.Symlink(escape, filepath.Join(dir, "vendor")))

		err := store.WriteFile("proj-1", "vendor/file.txt", []byte("x"))
		assert.Equal(t, shared.ErrPathOutsideRoot, err)

		_, serr := os.Stat(filepath.Join(escape, "file.txt"))
		assert.True(t, os.IsNotExist(serr))
	})

	t.Run("symlinked sandbox directory is rejected", func(t *testing.T) {
		escape := t.TempDir()
		require.NoError(t, os.Symlink(escape, filepath.Join(store.Root(), "proj-2")))

		_, err := store.ListFiles("proj-2")
		assert.Equal(t, shared.ErrPathOutsideRoot, err)
	})
}

func TestSandboxStore_MaxFileSize(t *testing.T) {
	store := newTestSandbox(t, 8)

	t.Run("accepts files at the limit", func(t *testing.T) {
		err := store.WriteFile("proj-1", "ok.txt", []byte("12345678"))
		assert.NoError(t, err)
	})

	t.Run("rejects files over the limit", func(t *testing.T) {
		err := store.WriteFile("proj-1", "big.txt", []byte("123456789"))
		assert.Equal(t, shared.ErrFileTooLarge, err)
	})

	t.Run("zero limit disables the check", func(t *testing.T) {
		unlimited := newTestSandbox(t, 0)
		err := unlimited.WriteFile("proj-1", "big.txt", bytes.Repeat([]byte("x"), 1<<16))
		assert.NoError(t, err)
	})
}

func TestSandboxStore_DeleteFile(t *testing.T) {
	store := newTestSandbox(t, 0)

	t.Run("removes existing file", func(t *testing.T) {
		require.NoError(t, store.WriteFile("proj-1", "gone.txt", []byte("x")))

		err := store.DeleteFile("proj-1", "gone.txt")
		require.NoError(t, err)

		_, err = store.ReadFile("proj-1", "gone.txt")
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("missing file returns not found", func(t *testing.T) {
		err := store.DeleteFile("proj-1", "never-existed.txt")
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestSandboxStore_DeleteProject(t *testing.T) {
	store := newTestSandbox(t, 0)

	require.NoError(t, store.WriteFile("proj-1", "a.txt", []byte("a")))
	require.NoError(t, store.WriteFile("proj-1", "dir/b.txt", []byte("b")))

	err := store.DeleteProject("proj-1")
	require.NoError(t, err)

	entries, err := store.ListFiles("proj-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSandboxStore_ListFiles(t *testing.T) {
	store := newTestSandbox(t, 0)

	t.Run("empty project lists nothing", func(t *testing.T) {
		entries, err := store.ListFiles("proj-empty")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("lists files sorted with forward slashes", func(t *testing.T) {
		require.NoError(t, store.WriteFile("proj-1", "src/main.py", []byte("code")))
		require.NoError(t, store.WriteFile("proj-1", "README.md", []byte("docs")))

		entries, err := store.ListFiles("proj-1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "README.md", entries[0].Path)
		assert.Equal(t, int64(4), entries[0].Size)
		assert.Equal(t, "src/main.py", entries[1].Path)
	})
}

func TestSandboxStore_Archive(t *testing.T) {
	store := newTestSandbox(t, 0)

	require.NoError(t, store.WriteFile("proj-1", "main.py", []byte("print('hi')")))
	require.NoError(t, store.WriteFile("proj-1", "src/util.py", []byte("pass")))

	data, err := store.Archive("proj-1")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["main.py"])
	assert.True(t, names["src/util.py"])
}
