// Package gitpath contains consts and methods to work with path inside
// the .git directory
package gitpath

import (
	"path"
	"path/filepath"
)

// .git/ Files and directories
// Refs paths are kept in unix format since they are stored this way.
// Use the helpers to get a system path.
const (
	DotGitPath      = ".git"
	BranchesPath    = "branches"
	ConfigPath      = "config"
	DescriptionPath = "description"
	HEADPath        = "HEAD"
	IndexPath       = "index"
	ObjectsPath     = "objects"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
	RefsLockPath    = "refs.lock"
)

// LooseObjectPath returns the path of a loose object relative to the
// .git directory.
// Path is objects/first_2_chars_of_sha/remaining_chars_of_sha
//
// Ex. path of fcfe68a0e44e04bd7fd564fc0b75f1ae457e18b3 is:
// objects/fc/fe68a0e44e04bd7fd564fc0b75f1ae457e18b3
func LooseObjectPath(sha string) string {
	return filepath.Join(ObjectsPath, sha[:2], sha[2:])
}

// LooseObjectDir returns the fan-out directory that contains all the
// objects starting by the provided 2 chars
func LooseObjectDir(prefix string) string {
	return filepath.Join(ObjectsPath, prefix)
}

// RefFullName returns the UNIX path of a ref. The "refs/" prefix
// is added if missing.
// ex. for `heads/main` returns `refs/heads/main`
func RefFullName(name string) string {
	if name == RefsPath || len(name) > len(RefsPath) && name[:len(RefsPath)+1] == RefsPath+"/" {
		return name
	}
	return path.Join(RefsPath, name)
}

// LocalTagFullName returns the full name of a tag
// ex. for `my-tag` returns `refs/tags/my-tag`
func LocalTagFullName(shortName string) string {
	return path.Join(RefsTagsPath, shortName)
}

// LocalBranchFullName returns the full name of branch
// ex. for `main` returns `refs/heads/main`
func LocalBranchFullName(shortName string) string {
	return path.Join(RefsHeadsPath, shortName)
}

// SystemPath converts a ref name into a path relative to the
// .git directory that can be used on the current system
// Ex.: On windows refs/heads/master would return refs\heads\master
func SystemPath(name string) string {
	return filepath.FromSlash(name)
}
