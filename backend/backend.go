// Package backend contains the implementation used to store and
// retrieve data from the odb (.git directory)
package backend

import (
	"path/filepath"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/internal/cache"
	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/Nivl/minigit/internal/syncutil"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// DefaultCacheSize is the number of objects kept in memory by default
const DefaultCacheSize = 1000

// Description is the default content of .git/description
const Description = "Unnamed repository; edit this file 'description' to name the repository.\n"

// Options represents the optional params of a Backend
type Options struct {
	// FS is the filesystem to use.
	// Defaults to the OS filesystem
	FS afero.Fs
	// Logger defaults to a no-op logger
	Logger *zap.Logger
	// CacheSize is the maximum number of objects to keep in memory.
	// Defaults to DefaultCacheSize
	CacheSize int
}

// Backend stores and retrieves objects and references from a .git
// directory
type Backend struct {
	root   string
	fs     afero.Fs
	logger *zap.Logger

	cache    *cache.LRU
	objectMu *syncutil.NamedMutex
	refMu    *syncutil.NamedMutex
}

// New returns a new Backend for the .git directory at the given path
func New(dotGitPath string, opts Options) (*Backend, error) {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	c, err := cache.NewLRU(opts.CacheSize)
	if err != nil {
		return nil, xerrors.Errorf("could not create the object cache: %w", err)
	}

	return &Backend{
		root:     dotGitPath,
		fs:       opts.FS,
		logger:   opts.Logger,
		cache:    c,
		objectMu: syncutil.NewNamedMutex(101),
		refMu:    syncutil.NewNamedMutex(31),
	}, nil
}

// Path returns the path of the .git directory
func (b *Backend) Path() string {
	return b.root
}

// FS returns the filesystem used by the backend
func (b *Backend) FS() afero.Fs {
	return b.fs
}

// Close frees the resources used by the backend
func (b *Backend) Close() error {
	b.cache.Clear()
	return nil
}

// Init creates the directories and files of a new repository.
// HEAD will point to the given branch.
// The config file is not created.
func (b *Backend) Init(branchName string) error {
	dirs := []string{
		gitpath.BranchesPath,
		gitpath.ObjectsPath,
		gitpath.RefsTagsPath,
		gitpath.RefsHeadsPath,
	}
	for _, d := range dirs {
		fullPath := filepath.Join(b.root, gitpath.SystemPath(d))
		if err := b.fs.MkdirAll(fullPath, 0o755); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	p := filepath.Join(b.root, gitpath.DescriptionPath)
	if err := afero.WriteFile(b.fs, p, []byte(Description), 0o644); err != nil {
		return xerrors.Errorf("could not create file %s: %w", gitpath.DescriptionPath, err)
	}

	ref := ginternals.NewSymbolicReference(ginternals.Head, gitpath.LocalBranchFullName(branchName))
	if err := b.WriteReferenceSafe(ref); err != nil {
		return xerrors.Errorf("could not write HEAD: %w", err)
	}

	b.logger.Debug("repository initialized", zap.String("path", b.root))
	return nil
}
