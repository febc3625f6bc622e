// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Repo is a handle onto an on-disk repository: its root path and
// loaded configuration. Read operations need no lock; operations that
// mutate refs or remove objects must hold the lock via Lock/TryLock.
type Repo struct {
	Root   string
	Config Config
}

func (r *Repo) objectsPath() string { return filepath.Join(r.Root, "objects") }
func (r *Repo) blobsPath() string   { return filepath.Join(r.objectsPath(), "blobs") }
func (r *Repo) treesPath() string   { return filepath.Join(r.objectsPath(), "trees") }
func (r *Repo) commitsPath() string { return filepath.Join(r.objectsPath(), "commits") }
func (r *Repo) refsPath() string    { return filepath.Join(r.Root, "refs", "heads") }
func (r *Repo) tagsPath() string    { return filepath.Join(r.Root, "refs", "tags") }
func (r *Repo) tmpPath() string     { return filepath.Join(r.Root, "tmp") }
func (r *Repo) lockPath() string    { return filepath.Join(r.Root, ".lock") }
func (r *Repo) configPath() string  { return filepath.Join(r.Root, "config.toml") }

// BlobsDir, TreesDir, and CommitsDir expose the object-kind
// directories for callers outside the package that need to walk the
// store directly (fsck, gc).
func (r *Repo) BlobsDir() string   { return r.blobsPath() }
func (r *Repo) TreesDir() string   { return r.treesPath() }
func (r *Repo) CommitsDir() string { return r.commitsPath() }

// Init creates a new repository rooted at path. Raises RepoExistsError
// if path already contains one (config.toml present). The default
// namespace configuration is taken from the current process's
// /proc/self/{uid,gid}_map, or identity if that cannot be read.
func Init(path string) (*Repo, error) {
	repo := &Repo{Root: path}
	if _, err := os.Stat(repo.configPath()); err == nil {
		return nil, &RepoExistsError{Path: path}
	}

	dirs := []string{
		repo.blobsPath(), repo.treesPath(), repo.commitsPath(),
		repo.refsPath(), repo.tagsPath(), repo.tmpPath(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &PathError{Path: dir, Err: err}
		}
	}

	repo.Config = Config{
		Namespace: NsConfig{UIDMap: CurrentUIDMap(), GIDMap: CurrentGIDMap()},
	}
	if err := SaveConfig(repo.configPath(), repo.Config); err != nil {
		return nil, err
	}
	return repo, nil
}

// Open loads the repository rooted at path. Raises NoRepoError if
// config.toml is absent. Does not honor the .zub discovery symlink —
// that is a CLI-layer convenience, not a core concern.
func Open(path string) (*Repo, error) {
	repo := &Repo{Root: path}
	if _, err := os.Stat(repo.configPath()); err != nil {
		return nil, &NoRepoError{Path: path}
	}
	cfg, err := LoadConfig(repo.configPath())
	if err != nil {
		return nil, err
	}
	repo.Config = cfg
	return repo, nil
}

// Save persists r.Config back to config.toml.
func (r *Repo) Save() error {
	return SaveConfig(r.configPath(), r.Config)
}

// RepoLock is a held advisory lock on a repository. Call Unlock when
// done; failing to do so leaks the open file descriptor until process
// exit, at which point the OS releases the flock anyway.
type RepoLock struct {
	file *os.File
}

// Unlock releases the lock.
func (l *RepoLock) Unlock() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	return err
}

func (r *Repo) openLockFile() (*os.File, error) {
	f, err := os.OpenFile(r.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, &PathError{Path: r.lockPath(), Err: err}
	}
	return f, nil
}

// Lock acquires the repository's exclusive advisory lock, blocking
// until it is available. All write operations (commit, ref updates,
// GC, push/pull destination-side writes) must hold this lock.
func (r *Repo) Lock() (*RepoLock, error) {
	f, err := r.openLockFile()
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, &LockContentionError{Path: r.Root}
	}
	return &RepoLock{file: f}, nil
}

// TryLock attempts to acquire the lock without blocking. Returns
// LockContentionError if another process holds it.
func (r *Repo) TryLock() (*RepoLock, error) {
	f, err := r.openLockFile()
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, &LockContentionError{Path: r.Root}
	}
	return &RepoLock{file: f}, nil
}

// WithLock runs fn while holding the repository's exclusive lock,
// always releasing it before returning, even if fn panics.
func WithLock(r *Repo, fn func() error) error {
	lock, err := r.Lock()
	if err != nil {
		return err
	}
	defer lock.Unlock()
	return fn()
}
