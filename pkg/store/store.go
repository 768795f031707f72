package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/libgit2/git2go/v34"
)

// Store keeps rendered manifests in a git repository so every render is a
// snapshot: refresh shows a diff before anything is applied, and a bad
// upgrade rolls back to the previous commit.
type Store struct {
	repo *git.Repository
	dir  string

	AuthorName  string
	AuthorEmail string
}

const manifestFile = "manifests.yaml"

// Open opens the store at dir, initializing a fresh repository when none
// exists yet.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir, AuthorName: "adkctl", AuthorEmail: "adkctl@localhost"}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest dir %s: %w", dir, err)
	}
	if repo, err := git.OpenRepository(dir); err == nil {
		s.repo = repo
		return s, nil
	}
	repo, err := git.InitRepository(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize manifest store: %w", err)
	}
	s.repo = repo
	return s, nil
}

// ManifestPath is where WriteRelease puts the rendered stream for a release.
func (s *Store) ManifestPath(release string) string {
	return filepath.Join(s.dir, release, manifestFile)
}

// WriteRelease writes the rendered manifest stream for one release into the
// store's working tree. It does not commit; pair with Snapshot.
func (s *Store) WriteRelease(release string, manifest string) (string, error) {
	if release == "" {
		return "", fmt.Errorf("release name is empty")
	}
	path := s.ManifestPath(release)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create release dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(manifest), 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// Snapshot stages everything in the working tree and commits it. Returns the
// commit id.
func (s *Store) Snapshot(ctx context.Context, message string) (string, error) {
	index, err := s.repo.Index()
	if err != nil {
		return "", fmt.Errorf("failed to get index: %w", err)
	}
	defer index.Free()
	if err := index.AddAll([]string{}, git.IndexAddDefault, nil); err != nil {
		return "", fmt.Errorf("failed to stage manifests: %w", err)
	}
	if err := index.Write(); err != nil {
		return "", fmt.Errorf("failed to write index: %w", err)
	}
	treeOid, err := index.WriteTree()
	if err != nil {
		return "", fmt.Errorf("failed to write tree: %w", err)
	}
	tree, err := s.repo.LookupTree(treeOid)
	if err != nil {
		return "", fmt.Errorf("failed to lookup tree: %w", err)
	}
	defer tree.Free()

	var parents []*git.Commit
	if head, err := s.repo.Head(); err == nil {
		defer head.Free()
		if parent, err := s.repo.LookupCommit(head.Target()); err == nil {
			defer parent.Free()
			parents = append(parents, parent)
		}
	}
	sig := &git.Signature{Name: s.AuthorName, Email: s.AuthorEmail, When: time.Now()}
	oid, err := s.repo.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	if err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return oid.String(), nil
}

// Diff returns a unified diff of the working tree against the last snapshot,
// optionally narrowed to one release. Before the first snapshot it diffs
// against the index, so a fresh store still shows what would be committed.
func (s *Store) Diff(ctx context.Context, release string) (string, error) {
	index, err := s.repo.Index()
	if err != nil {
		return "", fmt.Errorf("failed to get index: %w", err)
	}
	defer index.Free()

	var diff *git.Diff
	if head, err := s.repo.Head(); err == nil {
		defer head.Free()
		headCommit, err := s.repo.LookupCommit(head.Target())
		if err != nil {
			return "", fmt.Errorf("failed to lookup HEAD commit: %w", err)
		}
		defer headCommit.Free()
		headTree, err := headCommit.Tree()
		if err != nil {
			return "", fmt.Errorf("failed to get HEAD tree: %w", err)
		}
		defer headTree.Free()
		diff, err = s.repo.DiffTreeToWorkdirWithIndex(headTree, nil)
		if err != nil {
			return "", fmt.Errorf("failed to diff against snapshot: %w", err)
		}
	} else {
		diff, err = s.repo.DiffIndexToWorkdir(index, nil)
		if err != nil {
			return "", fmt.Errorf("failed to diff working tree: %w", err)
		}
	}
	defer diff.Free()
	return formatDiff(diff, release)
}

func formatDiff(diff *git.Diff, release string) (string, error) {
	prefix := ""
	if release != "" {
		prefix = release + "/"
	}
	var out string
	err := diff.ForEach(func(delta git.DiffDelta, progress float64) (git.DiffForEachHunkCallback, error) {
		if prefix != "" && !matchesRelease(delta, prefix) {
			// git2go invokes the hunk/line callbacks unconditionally, so
			// skipping a file requires no-op callbacks rather than nil.
			return func(git.DiffHunk) (git.DiffForEachLineCallback, error) {
				return func(git.DiffLine) error { return nil }, nil
			}, nil
		}
		out += fmt.Sprintf("diff --git a/%s b/%s\n", delta.OldFile.Path, delta.NewFile.Path)
		return func(hunk git.DiffHunk) (git.DiffForEachLineCallback, error) {
			out += fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
				hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines)
			return func(line git.DiffLine) error {
				out += string(rune(line.Origin)) + line.Content
				return nil
			}, nil
		}, nil
	}, git.DiffDetailLines)
	if err != nil {
		return "", fmt.Errorf("failed to walk diff: %w", err)
	}
	return out, nil
}

func matchesRelease(delta git.DiffDelta, prefix string) bool {
	return hasPrefix(delta.NewFile.Path, prefix) || hasPrefix(delta.OldFile.Path, prefix)
}

func hasPrefix(path, prefix string) bool {
	return len(path) >= len(prefix) && path[:len(prefix)] == prefix
}

// Push publishes the snapshot history to a remote, for teams that keep the
// manifest store in a GitOps repository.
func (s *Store) Push(ctx context.Context, remoteName, branch string) error {
	remote, err := s.repo.Remotes.Lookup(remoteName)
	if err != nil {
		return fmt.Errorf("failed to lookup remote %s: %w", remoteName, err)
	}
	defer remote.Free()
	refspec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	if err := remote.Push([]string{refspec}, &git.PushOptions{}); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

// AddRemote registers a remote for Push.
func (s *Store) AddRemote(ctx context.Context, name, url string) error {
	if _, err := s.repo.Remotes.Create(name, url); err != nil {
		return fmt.Errorf("failed to add remote: %w", err)
	}
	return nil
}

// Close frees the underlying repository.
func (s *Store) Close() error {
	if s.repo != nil {
		s.repo.Free()
		s.repo = nil
	}
	return nil
}
