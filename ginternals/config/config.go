// Package config contains structs to interact with the config file of
// a repository
package config

import (
	"bytes"
	"strconv"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// .git/config sections and keys
const (
	SectionCore          = "core"
	KeyFormatVersion     = "repositoryformatversion"
	KeyFileMode          = "filemode"
	KeyBare              = "bare"
	DefaultFormatVersion = 0
)

// git keys are case insensitive
var loadOptions = ini.LoadOptions{ //nolint:gochecknoglobals // treat as a const
	Insensitive: true,
}

// RepoConfig represents the config of a repository, as stored in
// .git/config.
// Values that are missing or that cannot be parsed use their
// default value.
type RepoConfig struct {
	// RepositoryFormatVersion is the version of the format of the
	// repository. Only 0 is supported.
	RepositoryFormatVersion uint8
	// FileMode states whether the executable bit of the files should
	// be tracked
	FileMode bool
	// Bare states whether the repository has a working tree or not
	Bare bool

	// file contains the raw config, so the sections and keys we don't
	// know about are kept when saving
	file *ini.File
}

// New returns a RepoConfig with the default values
func New() *RepoConfig {
	return &RepoConfig{
		RepositoryFormatVersion: DefaultFormatVersion,
		file:                    ini.Empty(loadOptions),
	}
}

// Load loads the config file at the given path.
// A file that cannot be parsed is replaced by a default config and
// a warning is logged. Any other error is returned.
func Load(fs afero.Fs, path string, logger *zap.Logger) (*RepoConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerrors.Errorf("could not read config %s: %w", path, err)
	}

	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		logger.Warn("config file is malformed, it will be replaced by a default one",
			zap.String("path", path),
			zap.Error(err))
		return repair(fs, path)
	}

	cfg := &RepoConfig{file: file}
	core := file.Section(SectionCore)

	if core.HasKey(KeyFormatVersion) {
		v, err := strconv.ParseUint(core.Key(KeyFormatVersion).String(), 10, 8)
		if err != nil {
			logger.Warn("invalid value, using default",
				zap.String("key", SectionCore+"."+KeyFormatVersion),
				zap.String("value", core.Key(KeyFormatVersion).String()))
			v = DefaultFormatVersion
		}
		cfg.RepositoryFormatVersion = uint8(v)
	}
	cfg.FileMode = boolKey(logger, core, KeyFileMode)
	cfg.Bare = boolKey(logger, core, KeyBare)
	return cfg, nil
}

// boolKey returns the value of a boolean key, or false if the key is
// missing or invalid
func boolKey(logger *zap.Logger, section *ini.Section, key string) bool {
	if !section.HasKey(key) {
		return false
	}
	v, err := section.Key(key).Bool()
	if err != nil {
		logger.Warn("invalid value, using default",
			zap.String("key", section.Name()+"."+key),
			zap.String("value", section.Key(key).String()))
		return false
	}
	return v
}

// repair removes the file at the given path and replaces it by a
// default config
func repair(fs afero.Fs, path string) (*RepoConfig, error) {
	if err := fs.Remove(path); err != nil {
		return nil, xerrors.Errorf("could not remove malformed config %s: %w", path, err)
	}
	cfg := New()
	if err := cfg.Save(fs, path); err != nil {
		return nil, xerrors.Errorf("could not replace malformed config %s: %w", path, err)
	}
	return cfg, nil
}

// Save persists the config at the given path
func (cfg *RepoConfig) Save(fs afero.Fs, path string) error {
	if cfg.file == nil {
		cfg.file = ini.Empty(loadOptions)
	}
	core := cfg.file.Section(SectionCore)
	core.Key(KeyFormatVersion).SetValue(strconv.Itoa(int(cfg.RepositoryFormatVersion)))
	core.Key(KeyFileMode).SetValue(strconv.FormatBool(cfg.FileMode))
	core.Key(KeyBare).SetValue(strconv.FormatBool(cfg.Bare))

	buf := new(bytes.Buffer)
	if _, err := cfg.file.WriteTo(buf); err != nil {
		return xerrors.Errorf("could not serialize the config: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("could not write config %s: %w", path, err)
	}
	return nil
}

// Raw returns the value of any key of the config, and whether the
// key exists
func (cfg *RepoConfig) Raw(section, key string) (value string, ok bool) {
	if cfg.file == nil {
		return "", false
	}
	s, err := cfg.file.GetSection(section)
	if err != nil || !s.HasKey(key) {
		return "", false
	}
	return s.Key(key).String(), true
}
