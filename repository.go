// Package git contains the methods to interact with a git repository:
// reading and writing objects, resolving names and references,
// computing the status of the working tree, and checking out trees
package git

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/Nivl/minigit/backend"
	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/config"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// SupportedFormatVersion is the highest repository format version
// we know how to read
const SupportedFormatVersion = 0

// Repository represent a git repository
// A Git repository is the .git/ folder inside a project.
// This repository tracks all changes made to files in your project,
// building a history over time.
// https://blog.axosoft.com/learning-git-repository/
type Repository struct {
	workTree   string
	dotGitPath string

	fs     afero.Fs
	logger *zap.Logger
	dotGit *backend.Backend
	config *config.RepoConfig
}

// OpenOptions contains all the optional data used to open a
// repository
type OpenOptions struct {
	// Force skips all the validations: the metadata directory and the
	// config file don't have to exist, and the format version is not
	// checked
	Force bool
	// FS is the filesystem to use. Defaults to the OS filesystem
	FS afero.Fs
	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// InitOptions contains all the optional data used to initialized a
// repository
type InitOptions struct {
	// InitialBranch is the branch HEAD points to.
	// Defaults to master
	InitialBranch string
	// FS is the filesystem to use. Defaults to the OS filesystem
	FS afero.Fs
	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// OpenRepository loads an existing git repository by reading its
// config file, and returns a Repository instance
func OpenRepository(workTree string) (*Repository, error) {
	return OpenRepositoryWithOptions(workTree, OpenOptions{})
}

// OpenRepositoryWithOptions loads an existing git repository by reading
// its config file, and returns a Repository instance
func OpenRepositoryWithOptions(workTree string, opts OpenOptions) (*Repository, error) {
	r, err := newRepository(workTree, opts.FS, opts.Logger)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		info, err := r.fs.Stat(r.dotGitPath)
		if err != nil || !info.IsDir() {
			return nil, xerrors.Errorf("%s: %w", r.dotGitPath, ErrNotAGitRepository)
		}
	}

	cfgPath := r.configPath()
	cfg, err := config.Load(r.fs, cfgPath, r.logger)
	switch {
	case err == nil:
		r.config = cfg
	case errors.Is(err, os.ErrNotExist):
		if !opts.Force {
			return nil, xerrors.Errorf("%s: %w", cfgPath, ErrConfigurationFileMissing)
		}
		r.config = config.New()
	default:
		return nil, xerrors.Errorf("could not load the config: %w", err)
	}

	if !opts.Force && r.config.RepositoryFormatVersion > SupportedFormatVersion {
		return nil, &UnsupportedVersionError{
			Actual:    r.config.RepositoryFormatVersion,
			Supported: SupportedFormatVersion,
		}
	}

	return r, nil
}

// InitRepository initialize a new git repository by creating the .git
// directory in the given path, which is where almost everything that
// Git stores and manipulates is located.
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain#ch10-git-internals
func InitRepository(workTree string) (*Repository, error) {
	return InitRepositoryWithOptions(workTree, InitOptions{})
}

// InitRepositoryWithOptions initialize a new git repository by creating
// the .git directory in the given path, which is where almost everything
// that Git stores and manipulates is located.
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain#ch10-git-internals
func InitRepositoryWithOptions(workTree string, opts InitOptions) (*Repository, error) {
	if opts.InitialBranch == "" {
		opts.InitialBranch = ginternals.Master
	}
	r, err := newRepository(workTree, opts.FS, opts.Logger)
	if err != nil {
		return nil, err
	}

	info, err := lstat(r.fs, workTree)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, xerrors.Errorf("%s: %w", workTree, ErrNotADirectory)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, xerrors.Errorf("could not check %s: %w", workTree, err)
	}

	infos, err := afero.ReadDir(r.fs, r.dotGitPath)
	switch {
	case err == nil:
		if len(infos) > 0 {
			return nil, xerrors.Errorf("%s: %w", r.dotGitPath, ErrAlreadyInitialized)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, xerrors.Errorf("could not read %s: %w", r.dotGitPath, err)
	}

	if err = r.fs.MkdirAll(r.dotGitPath, 0o755); err != nil {
		return nil, xerrors.Errorf("could not create %s: %w", r.dotGitPath, err)
	}
	if err = r.dotGit.Init(opts.InitialBranch); err != nil {
		return nil, xerrors.Errorf("could not initialize the repository: %w", err)
	}

	r.config = config.New()
	if err = r.WriteConfig(); err != nil {
		return nil, err
	}

	r.logger.Info("initialized empty repository", zap.String("path", r.dotGitPath))
	return r, nil
}

func newRepository(workTree string, fs afero.Fs, logger *zap.Logger) (*Repository, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Repository{
		workTree:   workTree,
		dotGitPath: filepath.Join(workTree, gitpath.DotGitPath),
		fs:         fs,
		logger:     logger,
	}

	var err error
	r.dotGit, err = backend.New(r.dotGitPath, backend.Options{
		FS:     fs,
		Logger: logger,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not create the backend: %w", err)
	}
	return r, nil
}

// lstat uses Lstat when the filesystem supports it, so symlinks
// are not followed
func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}

// Close frees the resources used by the repository
func (r *Repository) Close() error {
	return r.dotGit.Close()
}

// WorkTree returns the path of the working tree
func (r *Repository) WorkTree() string {
	return r.workTree
}

// DotGitPath returns the path of the metadata directory
func (r *Repository) DotGitPath() string {
	return r.dotGitPath
}

// Config returns the config of the repository
func (r *Repository) Config() *config.RepoConfig {
	return r.config
}

func (r *Repository) configPath() string {
	return filepath.Join(r.dotGitPath, gitpath.ConfigPath)
}

// WriteConfig persists the config of the repository
func (r *Repository) WriteConfig() error {
	if err := r.config.Save(r.fs, r.configPath()); err != nil {
		return xerrors.Errorf("could not write the config: %w", err)
	}
	return nil
}

// Object returns the object matching the given ID
func (r *Repository) Object(oid ginternals.Oid) (*object.Object, error) {
	return r.dotGit.Object(oid)
}

// HasObject returns whether an object exists in the odb
func (r *Repository) HasObject(oid ginternals.Oid) (bool, error) {
	return r.dotGit.HasObject(oid)
}

// WriteObject persists an object and returns its ID.
// Writing an object that already exists is a no-op
func (r *Repository) WriteObject(o *object.Object) (ginternals.Oid, error) {
	return r.dotGit.WriteObject(o)
}

// Blob returns the blob matching the given ID
func (r *Repository) Blob(oid ginternals.Oid) (*object.Blob, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, err
	}
	return o.AsBlob()
}

// Tree returns the tree matching the given ID
func (r *Repository) Tree(oid ginternals.Oid) (*object.Tree, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, err
	}
	return o.AsTree()
}

// Commit returns the commit matching the given ID
func (r *Repository) Commit(oid ginternals.Oid) (*object.Commit, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, err
	}
	return o.AsCommit()
}

// Tag returns the tag matching the given ID
func (r *Repository) Tag(oid ginternals.Oid) (*object.Tag, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, err
	}
	return o.AsTag()
}

// HashObject reads the file at the given path and stores it in the
// odb as an object of the given type.
// Only blobs are supported, ErrNotImplemented is returned for the
// other types
func (r *Repository) HashObject(path string, typ object.Type) (ginternals.Oid, error) {
	switch typ {
	case object.TypeBlob:
	case object.TypeCommit, object.TypeTree, object.TypeTag:
		return ginternals.NullOid, xerrors.Errorf("hash %s from a file: %w", typ, ErrNotImplemented)
	default:
		return ginternals.NullOid, xerrors.Errorf("type %s: %w", typ, object.ErrObjectUnknown)
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not read %s: %w", path, err)
	}
	return r.dotGit.WriteObject(object.NewBlob(data).ToObject())
}
