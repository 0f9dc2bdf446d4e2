package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/s3upload/errors"
	"github.com/input-output-hk/s3upload/fs"
	"github.com/input-output-hk/s3upload/s3types"
)

// SkipReason explains why a file produced no UploadTask.
type SkipReason string

// Skip reasons
const (
	// SkipPlaceholder marks a file whose name ends in the placeholder suffix
	SkipPlaceholder SkipReason = "placeholder"

	// SkipExcluded marks a file rejected by include/exclude patterns
	SkipExcluded SkipReason = "excluded"
)

// VisitFunc is called for every file that should be uploaded.
// Returning an error stops the walk and the error is returned from Walk unchanged.
type VisitFunc func(task *s3types.UploadTask) error

// SkipFunc is called for every regular file that is deliberately not uploaded.
type SkipFunc func(path string, reason SkipReason)

// ErrorFunc decides what happens when an entry below the root cannot be read.
// Returning nil skips the entry and continues the walk.
type ErrorFunc func(err error) error

// Scanner walks a local directory tree.
type Scanner struct {
	filesystem      fs.Filesystem
	patternMatcher  *PatternMatcher
	includePatterns []string
	excludePatterns []string
	onError         ErrorFunc
}

// NewScanner creates a new scanner over the provided filesystem.
// Include and exclude patterns are optional; the placeholder suffix is always skipped.
func NewScanner(filesystem fs.Filesystem, includePatterns, excludePatterns []string) *Scanner {
	return &Scanner{
		filesystem:      filesystem,
		patternMatcher:  NewPatternMatcher(),
		includePatterns: includePatterns,
		excludePatterns: excludePatterns,
	}
}

// OnError installs a handler for unreadable entries. Without one the first
// such error stops the walk.
func (s *Scanner) OnError(fn ErrorFunc) {
	s.onError = fn
}

// StorageKey derives the object key for a local path by replacing every
// backslash with a forward slash. Paths without backslashes are unchanged.
func StorageKey(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// IsPlaceholder reports whether a file name ends with the placeholder suffix.
// The match is a case-sensitive suffix match on the name only.
func IsPlaceholder(name string) bool {
	return strings.HasSuffix(name, s3types.PlaceholderSuffix)
}

// maxLinkHops bounds how many symbolic links are followed to resolve the root.
const maxLinkHops = 40

// Walk enumerates root recursively and calls visit for every regular file
// that is neither a placeholder nor excluded, in the order the filesystem
// walk yields them. Directories never produce tasks. A symbolic link is
// treated as a file when its target is a regular file; symlinked
// directories are not descended into, except for root itself.
//
// Task paths keep root exactly as given, joined with the file's path below
// it, so "./data" yields "./data/a.txt" and a symlinked root yields paths
// under the link's name.
//
// Walk fails with a filesystem error if root is empty, missing or not a
// directory, or if any entry beneath it cannot be read.
func (s *Scanner) Walk(ctx context.Context, root string, visit VisitFunc, skip SkipFunc) error {
	walkRoot, err := s.resolveRoot(root)
	if err != nil {
		return err
	}
	base := filepath.Clean(walkRoot)

	var visitErr error
	err = s.filesystem.Walk(walkRoot, func(path string, info os.FileInfo, err error) error {
		rel, relErr := filepath.Rel(base, path)
		sourcePath := path
		if relErr == nil {
			sourcePath = underRoot(root, rel)
		}

		if err != nil {
			return s.entryError(errors.NewFilesystemError("walk", sourcePath, err))
		}

		// Check if context is cancelled
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Skip directories (we only want files)
		if info.IsDir() {
			return nil
		}

		info, ok, err := s.regularFile(path, info)
		if err != nil {
			// dangling links are listed by the walk but cannot be read
			return s.entryError(errors.NewFilesystemError("stat", sourcePath, err))
		}
		if !ok {
			return nil
		}

		if IsPlaceholder(info.Name()) {
			if skip != nil {
				skip(sourcePath, SkipPlaceholder)
			}
			return nil
		}

		if relErr == nil && !s.included(rel) {
			if skip != nil {
				skip(sourcePath, SkipExcluded)
			}
			return nil
		}

		task := &s3types.UploadTask{
			SourcePath: sourcePath,
			OpenPath:   path,
			Key:        StorageKey(sourcePath),
			Size:       info.Size(),
		}

		if err := visit(task); err != nil {
			visitErr = err
			return err
		}
		return nil
	})

	if visitErr != nil {
		return visitErr
	}
	if err != nil {
		if errors.IsFilesystem(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return errors.NewFilesystemError("walk", root, err)
	}

	return nil
}

func (s *Scanner) entryError(err error) error {
	if s.onError == nil {
		return err
	}
	return s.onError(err)
}

// resolveRoot checks that root is a readable directory and returns the path
// to hand to the filesystem walk. A symlinked root is replaced by the
// directory it points to, since the walk does not follow links.
func (s *Scanner) resolveRoot(root string) (string, error) {
	if root == "" {
		return "", errors.NewFilesystemError("walk", root, errors.ErrMissingSetting).
			WithMessage("source directory")
	}

	info, err := s.filesystem.Stat(root)
	if err != nil {
		return "", errors.NewFilesystemError("walk", root, err)
	}
	if !info.IsDir() {
		return "", errors.NewFilesystemError("walk", root, errors.ErrNotDirectory)
	}

	walkRoot := root
	for range maxLinkHops {
		linfo, err := s.filesystem.Lstat(walkRoot)
		if err != nil {
			return "", errors.NewFilesystemError("walk", root, err)
		}
		if linfo.Mode()&os.ModeSymlink == 0 {
			return walkRoot, nil
		}

		target, err := s.filesystem.Readlink(walkRoot)
		if err != nil {
			return "", errors.NewFilesystemError("walk", root, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(filepath.Clean(walkRoot)), target)
		}
		walkRoot = target
	}

	return "", errors.NewFilesystemError("walk", root, errors.ErrSymlinkLoop)
}

// underRoot joins root and a walk-relative path without cleaning root.
func underRoot(root, rel string) string {
	if rel == "." {
		return root
	}
	if strings.HasSuffix(root, "/") || strings.HasSuffix(root, string(filepath.Separator)) {
		return root + rel
	}
	return root + string(filepath.Separator) + rel
}

// regularFile resolves symbolic links and reports whether path is a regular file.
func (s *Scanner) regularFile(path string, info os.FileInfo) (os.FileInfo, bool, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := s.filesystem.Stat(path)
		if err != nil {
			return nil, false, err
		}
		if !target.Mode().IsRegular() {
			return nil, false, nil
		}
		return &linkInfo{FileInfo: target, name: info.Name()}, true, nil
	}

	return info, info.Mode().IsRegular(), nil
}

// included applies include/exclude patterns to a path relative to the root.
func (s *Scanner) included(relPath string) bool {
	if len(s.includePatterns) == 0 && len(s.excludePatterns) == 0 {
		return true
	}

	return s.patternMatcher.ShouldIncludeFile(relPath, s.includePatterns, s.excludePatterns)
}

// linkInfo reports a symlink target's metadata under the link's name.
type linkInfo struct {
	os.FileInfo
	name string
}

func (l *linkInfo) Name() string {
	return l.name
}
