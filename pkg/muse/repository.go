// Package muse implements the music-native version control engine: the
// commit DAG, ref store, merge engine, reset/checkout, tag index, and the
// musical analysis services layered on top of them.
package muse

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/config"
	"github.com/muse-vcs/muse/modules/objstore"
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/repolock"
	"github.com/muse-vcs/muse/modules/snapstore"
	"github.com/muse-vcs/muse/modules/tagindex"
	"github.com/muse-vcs/muse/modules/tracelog"
)

const (
	museDirName   = ".muse"
	workDirName   = "muse-work"
	schemaVersion = "1"
)

type repoMetadata struct {
	RepoID        string `json:"repo_id"`
	SchemaVersion string `json:"schema_version"`
}

// Repository is an open handle onto one .muse directory and its adjacent
// working tree.
type Repository struct {
	path      string // directory containing .muse and muse-work
	museDir   string
	workDir   string
	repoID    string
	config    config.Config
	objects   *objstore.Store
	snapshots *snapstore.Store
	commits   *commitstore.Store
	refs      *refstore.Store
	tags      *tagindex.Store
	lock      *repolock.Lock
	cache     *commitCache
}

// Option configures repository initialization.
type Option func(*initOptions)

type initOptions struct {
	defaultBranch string
	user          config.User
}

// WithDefaultBranch overrides the branch name created by Init (default
// "main").
func WithDefaultBranch(name string) Option {
	return func(o *initOptions) { o.defaultBranch = name }
}

// WithUser seeds config.toml's [user] table on Init.
func WithUser(name, email string) Option {
	return func(o *initOptions) { o.user = config.User{Name: name, Email: email} }
}

func findMuseDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, museDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotARepositoryError{Path: start}
		}
		dir = parent
	}
}

func openAt(root, museDir string) (*Repository, error) {
	metaPath := filepath.Join(museDir, "repo.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, &RepoCorruptError{Detail: "repo.json unreadable: " + err.Error()}
	}
	var meta repoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, &RepoCorruptError{Detail: "repo.json malformed: " + err.Error()}
	}

	cfg, err := config.LoadMerged(filepath.Join(museDir, "config.toml"))
	if err != nil {
		return nil, &RepoCorruptError{Detail: "config.toml malformed: " + err.Error()}
	}

	objects, err := objstore.Open(filepath.Join(museDir, "objects"))
	if err != nil {
		return nil, err
	}
	snapshots, err := snapstore.Open(filepath.Join(museDir, "snapshots"))
	if err != nil {
		return nil, err
	}
	commits, err := commitstore.Open(filepath.Join(museDir, "commits"))
	if err != nil {
		return nil, err
	}
	refs, err := refstore.Open(museDir)
	if err != nil {
		return nil, err
	}
	tags, err := tagindex.Open(filepath.Join(museDir, "tags"))
	if err != nil {
		return nil, err
	}

	return &Repository{
		path:      root,
		museDir:   museDir,
		workDir:   filepath.Join(root, workDirName),
		repoID:    meta.RepoID,
		config:    cfg,
		objects:   objects,
		snapshots: snapshots,
		commits:   commits,
		refs:      refs,
		tags:      tags,
		lock:      repolock.New(filepath.Join(museDir, "muse.lock")),
		cache:     newCommitCache(),
	}, nil
}

// Open walks up from start looking for a .muse directory and returns an
// open handle on the repository it belongs to.
func Open(start string) (*Repository, error) {
	museDir, err := findMuseDir(start)
	if err != nil {
		return nil, err
	}
	return openAt(filepath.Dir(museDir), museDir)
}

// Init creates a new repository rooted at path.
func Init(path string, opts ...Option) (*Repository, error) {
	o := initOptions{defaultBranch: "main"}
	for _, opt := range opts {
		opt(&o)
	}
	museDir := filepath.Join(path, museDirName)
	if info, err := os.Stat(museDir); err == nil && info.IsDir() {
		return nil, NewUserError("repository already initialized at %q", path)
	}
	if err := os.MkdirAll(museDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(path, workDirName), 0o755); err != nil {
		return nil, err
	}

	meta := repoMetadata{RepoID: uuid.NewString(), SchemaVersion: schemaVersion}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(museDir, "repo.json"), data, 0o644); err != nil {
		return nil, err
	}

	if !o.user.Empty() {
		if err := config.Save(filepath.Join(museDir, "config.toml"), config.Config{User: o.user}); err != nil {
			return nil, err
		}
	}

	r, err := openAt(path, museDir)
	if err != nil {
		return nil, err
	}
	branchRef := refstore.HeadsPrefix + o.defaultBranch
	if err := r.refs.WriteRef(branchRef, ""); err != nil {
		return nil, err
	}
	if err := r.refs.WriteHEAD(branchRef); err != nil {
		return nil, err
	}
	tracelog.Infof("muse: initialized repository %s at %s", r.repoID, path)
	return r, nil
}

// RepoID returns the repository's UUID.
func (r *Repository) RepoID() string { return r.repoID }

// Path returns the repository root directory (the parent of .muse and
// muse-work).
func (r *Repository) Path() string { return r.path }

// WorkDir returns the working-tree directory.
func (r *Repository) WorkDir() string { return r.workDir }

// Config returns the repository's merged configuration.
func (r *Repository) Config() config.Config { return r.config }

// CurrentBranch returns the branch name HEAD currently points to.
func (r *Repository) CurrentBranch() (string, error) {
	headRef, err := r.refs.ReadHEAD()
	if err != nil {
		return "", &RepoCorruptError{Detail: "HEAD unreadable: " + err.Error()}
	}
	if !strings.HasPrefix(headRef, refstore.HeadsPrefix) {
		return "", &RepoCorruptError{Detail: "HEAD does not name a branch: " + headRef}
	}
	return strings.TrimPrefix(headRef, refstore.HeadsPrefix), nil
}

// mergeStatePath returns the path to MERGE_STATE.json.
func (r *Repository) mergeStatePath() string {
	return filepath.Join(r.museDir, "MERGE_STATE.json")
}

// mergeInProgress reports whether MERGE_STATE.json currently exists.
func (r *Repository) mergeInProgress() bool {
	_, err := os.Stat(r.mergeStatePath())
	return err == nil
}

// withLock acquires the repository lock, runs fn, and releases the lock on
// every exit path including a panic.
func (r *Repository) withLock(fn func() error) (err error) {
	release, lerr := r.lock.Acquire()
	if lerr != nil {
		return lerr
	}
	defer release()
	return fn()
}
