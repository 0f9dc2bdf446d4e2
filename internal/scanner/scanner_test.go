package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/s3upload/errors"
	"github.com/input-output-hk/s3upload/fs/billy"
	"github.com/input-output-hk/s3upload/internal/testutil"
	"github.com/input-output-hk/s3upload/s3types"
)

type walkResult struct {
	keys    []string
	skipped map[string]SkipReason
}

func walk(t *testing.T, s *Scanner, root string) (walkResult, error) {
	t.Helper()

	res := walkResult{skipped: map[string]SkipReason{}}
	err := s.Walk(context.Background(), root,
		func(task *s3types.UploadTask) error {
			res.keys = append(res.keys, task.Key)
			return nil
		},
		func(path string, reason SkipReason) {
			res.skipped[path] = reason
		},
	)
	return res, err
}

func TestStorageKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "data/a.txt", want: "data/a.txt"},
		{path: `data\sub\b.csv`, want: "data/sub/b.csv"},
		{path: `C:\tmp\x.bin`, want: "C:/tmp/x.bin"},
		{path: "/abs/path/file", want: "/abs/path/file"},
		{path: "../up/file", want: "../up/file"},
		{path: `mixed/dir\file`, want: "mixed/dir/file"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, StorageKey(tt.path))
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: ".gitkeep", want: true},
		{name: "foo.gitkeep", want: true},
		{name: ".gitkeep.bak", want: false},
		{name: ".GITKEEP", want: false},
		{name: "gitkeep", want: false},
		{name: "a.txt", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlaceholder(tt.name))
		})
	}
}

func TestScanner_Walk(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		root        string
		include     []string
		exclude     []string
		wantKeys    []string
		wantSkipped map[string]SkipReason
	}{
		{
			name: "nested tree with placeholder",
			files: map[string]string{
				"data/a.txt":     "hello",
				"data/.gitkeep":  "",
				"data/sub/b.csv": "x,y\n",
			},
			root:     "data",
			wantKeys: []string{"data/a.txt", "data/sub/b.csv"},
			wantSkipped: map[string]SkipReason{
				filepath.Join("data", ".gitkeep"): SkipPlaceholder,
			},
		},
		{
			name: "placeholders at every depth",
			files: map[string]string{
				"root/.gitkeep":           "",
				"root/a/.gitkeep":         "",
				"root/a/b/c/keep.gitkeep": "",
				"root/a/b/c/d.txt":        "d",
			},
			root:     "root",
			wantKeys: []string{"root/a/b/c/d.txt"},
			wantSkipped: map[string]SkipReason{
				filepath.Join("root", ".gitkeep"):                    SkipPlaceholder,
				filepath.Join("root", "a", ".gitkeep"):               SkipPlaceholder,
				filepath.Join("root", "a", "b", "c", "keep.gitkeep"): SkipPlaceholder,
			},
		},
		{
			name:        "only directories",
			files:       map[string]string{"empty/sub/.gitkeep": ""},
			root:        "empty",
			wantKeys:    nil,
			wantSkipped: map[string]SkipReason{filepath.Join("empty", "sub", ".gitkeep"): SkipPlaceholder},
		},
		{
			name: "exclude by base name at any depth",
			files: map[string]string{
				"d/keep.txt":    "k",
				"d/drop.log":    "l",
				"d/sub/two.log": "l",
			},
			root:     "d",
			exclude:  []string{"*.log"},
			wantKeys: []string{"d/keep.txt"},
			wantSkipped: map[string]SkipReason{
				filepath.Join("d", "drop.log"):       SkipExcluded,
				filepath.Join("d", "sub", "two.log"): SkipExcluded,
			},
		},
		{
			name: "include restricts and exclude wins",
			files: map[string]string{
				"d/a.csv":     "a",
				"d/b.txt":     "b",
				"d/tmp/c.csv": "c",
			},
			root:     "d",
			include:  []string{"**.csv"},
			exclude:  []string{"tmp/"},
			wantKeys: []string{"d/a.csv"},
			wantSkipped: map[string]SkipReason{
				filepath.Join("d", "b.txt"):        SkipExcluded,
				filepath.Join("d", "tmp", "c.csv"): SkipExcluded,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := billy.NewInMemoryFS()
			testutil.WriteTree(t, fsys, tt.files)

			s := NewScanner(fsys, tt.include, tt.exclude)
			res, err := walk(t, s, tt.root)
			require.NoError(t, err)

			assert.Equal(t, tt.wantKeys, res.keys)
			assert.Equal(t, tt.wantSkipped, res.skipped)
		})
	}
}

func TestScanner_Walk_TaskFields(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	testutil.WriteTree(t, fsys, map[string]string{"data/a.txt": "hello"})

	var tasks []*s3types.UploadTask
	err := NewScanner(fsys, nil, nil).Walk(context.Background(), "data",
		func(task *s3types.UploadTask) error {
			tasks = append(tasks, task)
			return nil
		}, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, filepath.Join("data", "a.txt"), tasks[0].SourcePath)
	assert.Equal(t, filepath.Join("data", "a.txt"), tasks[0].OpenPath)
	assert.Equal(t, "data/a.txt", tasks[0].Key)
	assert.Equal(t, int64(5), tasks[0].Size)
}

func TestScanner_Walk_KeepsRootAsGiven(t *testing.T) {
	tests := []struct {
		root     string
		wantKeys []string
	}{
		{root: "data", wantKeys: []string{"data/a.txt", "data/sub/b.csv"}},
		{root: "./data", wantKeys: []string{"./data/a.txt", "./data/sub/b.csv"}},
		{root: "data/", wantKeys: []string{"data/a.txt", "data/sub/b.csv"}},
		{root: "data//sub/..", wantKeys: []string{"data//sub/../a.txt", "data//sub/../sub/b.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			fsys := billy.NewInMemoryFS()
			testutil.WriteTree(t, fsys, map[string]string{
				"data/a.txt":     "a",
				"data/.gitkeep":  "",
				"data/sub/b.csv": "b",
			})

			res, err := walk(t, NewScanner(fsys, nil, nil), tt.root)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, res.keys)
		})
	}
}

func TestScanner_Walk_RelativeRootOnDisk(t *testing.T) {
	t.Chdir(t.TempDir())
	fsys := billy.NewBaseOSFS()
	testutil.WriteTree(t, fsys, map[string]string{
		"data/a.txt":     "a",
		"data/sub/b.csv": "b",
	})

	res, err := walk(t, NewScanner(fsys, nil, nil), "./data")
	require.NoError(t, err)
	assert.Equal(t, []string{"./data/a.txt", "./data/sub/b.csv"}, res.keys)
}

func TestScanner_Walk_RootErrors(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	testutil.WriteTree(t, fsys, map[string]string{"file.txt": "x"})

	tests := []struct {
		name    string
		root    string
		wantErr error
	}{
		{name: "empty root", root: "", wantErr: errors.ErrMissingSetting},
		{name: "missing root", root: "nope", wantErr: os.ErrNotExist},
		{name: "root is a file", root: "file.txt", wantErr: errors.ErrNotDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			err := NewScanner(fsys, nil, nil).Walk(context.Background(), tt.root,
				func(*s3types.UploadTask) error {
					called = true
					return nil
				}, nil)

			require.Error(t, err)
			assert.True(t, errors.IsFilesystem(err))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, called)
		})
	}
}

func TestScanner_Walk_VisitErrorStops(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	testutil.WriteTree(t, fsys, map[string]string{
		"d/1.txt": "1",
		"d/2.txt": "2",
		"d/3.txt": "3",
	})

	stop := errors.NewStorageError("upload", "b", "d/2.txt", errors.ErrAccessDenied)

	var seen []string
	err := NewScanner(fsys, nil, nil).Walk(context.Background(), "d",
		func(task *s3types.UploadTask) error {
			seen = append(seen, task.Key)
			if task.Key == "d/2.txt" {
				return stop
			}
			return nil
		}, nil)

	assert.Same(t, stop, err)
	assert.Equal(t, []string{"d/1.txt", "d/2.txt"}, seen)
}

func TestScanner_Walk_ContextCancelled(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	testutil.WriteTree(t, fsys, map[string]string{"d/1.txt": "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewScanner(fsys, nil, nil).Walk(ctx, "d", func(*s3types.UploadTask) error {
		t.Fatal("visit called after cancellation")
		return nil
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_Walk_Symlinks(t *testing.T) {
	dir := t.TempDir()
	fsys := billy.NewOSFS(dir)
	testutil.WriteTree(t, fsys, map[string]string{
		"outside/target.txt":   "target",
		"outside/nested/n.txt": "nested",
		"src/real.txt":         "real",
	})
	require.NoError(t, fsys.Symlink("../outside/target.txt", "src/link.txt"))
	require.NoError(t, fsys.Symlink("../outside/nested", "src/linkdir"))

	res, err := walk(t, NewScanner(fsys, nil, nil), "src")
	require.NoError(t, err)

	// file links are uploaded under the link's path, directory links are not followed
	assert.Equal(t, []string{"src/link.txt", "src/real.txt"}, res.keys)
}

func TestScanner_Walk_SymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	fsys := billy.NewBaseOSFS()
	realDir := filepath.Join(dir, "real")
	alias := filepath.Join(dir, "alias")
	testutil.WriteTree(t, fsys, map[string]string{filepath.Join(realDir, "a.txt"): "a"})
	require.NoError(t, fsys.Symlink(realDir, alias))

	var tasks []*s3types.UploadTask
	err := NewScanner(fsys, nil, nil).Walk(context.Background(), alias,
		func(task *s3types.UploadTask) error {
			tasks = append(tasks, task)
			return nil
		}, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, filepath.Join(alias, "a.txt"), tasks[0].SourcePath)
	assert.Equal(t, StorageKey(filepath.Join(alias, "a.txt")), tasks[0].Key)
	assert.Equal(t, filepath.Join(realDir, "a.txt"), tasks[0].OpenPath)
}

func TestScanner_Walk_SymlinkedRootInMemory(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	testutil.WriteTree(t, fsys, map[string]string{
		"real/a.txt":     "a",
		"real/sub/b.txt": "b",
		"real/.gitkeep":  "",
	})
	require.NoError(t, fsys.Symlink("real", "alias"))
	require.NoError(t, fsys.Symlink("alias", "alias2"))

	for _, root := range []string{"alias", "alias2"} {
		t.Run(root, func(t *testing.T) {
			var opened []string
			res := walkResult{skipped: map[string]SkipReason{}}
			err := NewScanner(fsys, nil, nil).Walk(context.Background(), root,
				func(task *s3types.UploadTask) error {
					res.keys = append(res.keys, task.Key)
					opened = append(opened, task.OpenPath)
					return nil
				},
				func(path string, reason SkipReason) {
					res.skipped[path] = reason
				})
			require.NoError(t, err)

			assert.Equal(t, []string{root + "/a.txt", root + "/sub/b.txt"}, res.keys)
			assert.Equal(t, []string{
				filepath.Join("real", "a.txt"),
				filepath.Join("real", "sub", "b.txt"),
			}, opened)
			assert.Equal(t, map[string]SkipReason{filepath.Join(root, ".gitkeep"): SkipPlaceholder}, res.skipped)
		})
	}
}

func TestScanner_Walk_DanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	fsys := billy.NewOSFS(dir)
	testutil.WriteTree(t, fsys, map[string]string{"src/a.txt": "a"})
	require.NoError(t, fsys.Symlink("missing.txt", "src/z.txt"))

	res, err := walk(t, NewScanner(fsys, nil, nil), "src")
	require.Error(t, err)
	assert.True(t, errors.IsFilesystem(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, []string{"src/a.txt"}, res.keys)
}

func TestScanner_Walk_OnErrorContinues(t *testing.T) {
	dir := t.TempDir()
	fsys := billy.NewOSFS(dir)
	testutil.WriteTree(t, fsys, map[string]string{
		"src/a.txt": "a",
		"src/z.txt": "z",
	})
	require.NoError(t, fsys.Symlink("missing.txt", "src/m.txt"))

	s := NewScanner(fsys, nil, nil)
	var entryErrs []error
	s.OnError(func(err error) error {
		entryErrs = append(entryErrs, err)
		return nil
	})

	res, err := walk(t, s, "src")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.txt", "src/z.txt"}, res.keys)
	require.Len(t, entryErrs, 1)
	assert.True(t, errors.IsFilesystem(entryErrs[0]))
}

func TestPatternMatcher_ShouldIncludeFile(t *testing.T) {
	pm := NewPatternMatcher()

	tests := []struct {
		name    string
		path    string
		include []string
		exclude []string
		want    bool
	}{
		{name: "no patterns", path: "a/b.txt", want: true},
		{name: "base name glob", path: "a/b.log", exclude: []string{"*.log"}, want: false},
		{name: "full path glob", path: "a/b.log", exclude: []string{"a/*.log"}, want: false},
		{name: "full path glob other dir", path: "c/b.log", exclude: []string{"a/*.log"}, want: true},
		{name: "directory pattern", path: "cache/x/y", exclude: []string{"cache/"}, want: false},
		{name: "nested directory pattern", path: "a/cache/y", exclude: []string{"cache/"}, want: false},
		{name: "double star suffix", path: "a/b/c.tmp", exclude: []string{"**/*.tmp"}, want: false},
		{name: "double star prefix", path: "logs/2024/x", exclude: []string{"logs/**"}, want: false},
		{name: "include miss", path: "a.txt", include: []string{"*.csv"}, want: false},
		{name: "include hit", path: "a.csv", include: []string{"*.csv"}, want: true},
		{name: "double star literal suffix", path: "a.csv", include: []string{"**.csv"}, want: true},
		{name: "double star literal suffix nested", path: "x/y/a.csv", include: []string{"**.csv"}, want: true},
		{name: "double star literal suffix miss", path: "a.txt", include: []string{"**.csv"}, want: false},
		{name: "prefix double star literal suffix", path: "logs/x/y.log", exclude: []string{"logs/**.log"}, want: false},
		{name: "prefix double star other dir", path: "app/x/y.log", exclude: []string{"logs/**.log"}, want: true},
		{name: "double star slash literal at top", path: "x.txt", exclude: []string{"**/x.txt"}, want: false},
		{name: "double star slash literal nested", path: "a/b/x.txt", exclude: []string{"**/x.txt"}, want: false},
		{name: "double star slash literal partial name", path: "a/bx.txt", exclude: []string{"**/x.txt"}, want: true},
		{name: "double star slash glob whole segment", path: "a/ab.tmp", exclude: []string{"**/b*.tmp"}, want: true},
		{name: "double star glob suffix", path: "logs/x/y.log", exclude: []string{"logs/**.l?g"}, want: false},
		{name: "windows separators", path: filepath.Join("a", "b.log"), exclude: []string{"a/b.log"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pm.ShouldIncludeFile(tt.path, tt.include, tt.exclude))
		})
	}
}

func TestPatternMatcher_ValidatePatterns(t *testing.T) {
	pm := NewPatternMatcher()

	assert.Empty(t, pm.ValidatePatterns([]string{"*.log", "tmp/", "**/*.bak", "a/?.txt"}))

	errs := pm.ValidatePatterns([]string{"ok", "[", "a/**/b/**", ""})
	require.Len(t, errs, 3)

	var pe *PatternError
	require.ErrorAs(t, errs[0], &pe)
	assert.Equal(t, 1, pe.Index)
	assert.Equal(t, "[", pe.Pattern)
}
