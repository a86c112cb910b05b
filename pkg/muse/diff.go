package muse

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/objstore"
	"github.com/muse-vcs/muse/modules/snapstore"
)

// DiffResult partitions a comparison between a working directory and a
// snapshot manifest into four path sets.
type DiffResult struct {
	Added     []string
	Modified  []string
	Removed   []string
	Unchanged []string
}

// hashWorkdirFile returns the content-hash object ID a file would get if
// ingested, without storing it.
func hashWorkdirFile(path string) (objstore.ObjectID, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return objstore.Hash(b), nil
}

// walkWorkdir returns every regular file under dir as a POSIX-relative
// path, sorted.
func walkWorkdir(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	return paths, err
}

// Diff compares the working directory against snapshot, classifying every
// path as added, modified, removed, or unchanged. A file is "modified" iff
// its SHA-256 differs from the manifest's object_id for the same path.
func Diff(workdir string, snapshot snapstore.Manifest) (DiffResult, error) {
	var result DiffResult
	present, err := walkWorkdir(workdir)
	if err != nil {
		return result, err
	}
	presentSet := make(map[string]struct{}, len(present))
	for _, p := range present {
		presentSet[p] = struct{}{}
		id, err := hashWorkdirFile(filepath.Join(workdir, filepath.FromSlash(p)))
		if err != nil {
			return result, err
		}
		if expected, ok := snapshot[p]; !ok {
			result.Added = append(result.Added, p)
		} else if expected != id {
			result.Modified = append(result.Modified, p)
		} else {
			result.Unchanged = append(result.Unchanged, p)
		}
	}
	for p := range snapshot {
		if _, ok := presentSet[p]; !ok {
			result.Removed = append(result.Removed, p)
		}
	}
	return result, nil
}

// Dirty reports whether the working directory differs from snapshot at all.
func (d DiffResult) Dirty() bool {
	return len(d.Added) > 0 || len(d.Modified) > 0 || len(d.Removed) > 0
}

// restoreWorkdir writes every path in manifest to the working tree and
// removes any working-tree file not present in manifest, so the tree ends
// up matching manifest exactly. Used by checkout, reset --hard, and merge.
func (r *Repository) restoreWorkdir(manifest snapstore.Manifest) error {
	present, err := walkWorkdir(r.workDir)
	if err != nil {
		return err
	}
	for p, id := range manifest {
		b, err := r.objects.Get(id)
		if err != nil {
			return err
		}
		full := filepath.Join(r.workDir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(full, b, 0o644); err != nil {
			return err
		}
	}
	for _, p := range present {
		if _, ok := manifest[p]; ok {
			continue
		}
		full := filepath.Join(r.workDir, filepath.FromSlash(p))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return pruneEmptyDirs(r.workDir)
}

// pruneEmptyDirs removes any directory under root left empty after file
// removal, without removing root itself.
func pruneEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(root, e.Name())
		if err := pruneEmptyDirs(sub); err != nil {
			return err
		}
		remaining, err := os.ReadDir(sub)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := os.Remove(sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// headManifest returns the manifest of the current HEAD commit, or an empty
// manifest when HEAD has no commits yet.
func (r *Repository) headManifest() (snapstore.Manifest, error) {
	head, err := r.refs.ResolveHEAD()
	if err != nil {
		return nil, err
	}
	if head == "" {
		return snapstore.Manifest{}, nil
	}
	c, err := r.getCommit(head)
	if err != nil {
		return nil, err
	}
	return r.snapshots.Get(c.SnapshotID)
}

// manifestOf returns the manifest of the commit resolved by id.
func (r *Repository) manifestOf(id commitstore.CommitID) (snapstore.Manifest, error) {
	c, err := r.getCommit(id)
	if err != nil {
		return nil, err
	}
	return r.snapshots.Get(c.SnapshotID)
}
