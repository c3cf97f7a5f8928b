// Package classpath enumerates the class artifacts reachable from a
// classpath string: directories are walked, archives are opened as zip
// containers, and every *.class member is streamed as an Entry.
package classpath

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tautenhahn/depengine/internal/apperr"
	"github.com/tautenhahn/depengine/internal/filter"
)

// Entry is one class artifact found while enumerating a classpath.
type Entry struct {
	// ContainerName is the node-tree container name this entry belongs to,
	// e.g. "dir:/abs/path" or "jar:commons-lang_jar".
	ContainerName string
	// ClassPath is the '/'-separated path of the class within its
	// container, with the ".class" suffix already removed.
	ClassPath string
	// Open returns a fresh reader over the class bytes. The caller must
	// close it. Archive members are read into memory while the archive is
	// still open, so Open stays valid after enumeration has closed it.
	Open func() (io.ReadCloser, error)
}

// Warning describes a non-fatal problem encountered while enumerating:
// an unreadable container or an unreadable entry within one. Enumeration
// continues past warnings; it only stops on context cancellation.
type Warning struct {
	Container string
	Err       error
}

// archiveKind maps a recognized archive suffix to the one-letter code used
// in the node naming scheme (kind ∈ {j, w, e, r}).
var archiveKind = map[string]string{
	".jar": "j",
	".war": "w",
	".ear": "e",
	".rar": "r",
}

// Entries lazily enumerates every class artifact named by classpathString,
// a list of directory or archive paths separated by os.PathListSeparator.
// It returns a channel of entries and a function that, once the channel has
// been fully drained, returns every warning collected along the way.
// Entries whose container name is ignored by f are skipped before the
// container is even opened.
func Entries(ctx context.Context, classpathString string, f *filter.Filter) (<-chan Entry, func() []Warning) {
	out := make(chan Entry)
	warnings := make(chan Warning)

	// Warnings are gathered as they arrive so the producer never blocks on
	// them while the caller is still draining out.
	var gathered []Warning
	gatherDone := make(chan struct{})
	go func() {
		for w := range warnings {
			gathered = append(gathered, w)
		}
		close(gatherDone)
	}()

	go func() {
		defer close(out)
		defer close(warnings)
		for _, raw := range splitClasspath(classpathString) {
			if raw == "" {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			enumerateOne(ctx, raw, f, out, warnings)
		}
	}()

	collected := func() []Warning {
		<-gatherDone
		return gathered
	}
	return out, collected
}

func splitClasspath(classpathString string) []string {
	return strings.Split(classpathString, string(os.PathListSeparator))
}

func enumerateOne(ctx context.Context, raw string, f *filter.Filter, out chan<- Entry, warnings chan<- Warning) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		warnings <- Warning{Container: raw, Err: apperr.Wrap(apperr.UnreadableContainer, "resolving absolute path", err)}
		return
	}

	ext := strings.ToLower(filepath.Ext(abs))
	kind, isArchive := archiveKind[ext]
	containerName := ContainerName(abs, isArchive, kind)

	if f.IsIgnoredSource(containerName) {
		return
	}

	if isArchive {
		enumerateArchive(ctx, abs, containerName, out, warnings)
		return
	}
	enumerateDir(ctx, abs, containerName, out, warnings)
}

// ContainerName builds the node-tree container name for a resolved,
// absolute classpath entry: "dir:<path>" for directories,
// "<kind>ar:<base>_<kind>ar" for archives.
func ContainerName(absPath string, isArchive bool, kindLetter string) string {
	if !isArchive {
		return "dir:" + absPath
	}
	base := filepath.Base(absPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	suffix := kindLetter + "ar"
	return suffix + ":" + base + "_" + suffix
}

func enumerateDir(ctx context.Context, root, containerName string, out chan<- Entry, warnings chan<- Warning) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			warnings <- Warning{Container: containerName, Err: apperr.Wrap(apperr.UnreadableContainer, path, err)}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".class") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			warnings <- Warning{Container: containerName, Err: apperr.Wrap(apperr.UnreadableContainer, path, err)}
			return nil
		}
		classPath := strings.TrimSuffix(filepath.ToSlash(rel), ".class")
		p := path
		entry := Entry{
			ContainerName: containerName,
			ClassPath:     classPath,
			Open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		}
		select {
		case out <- entry:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		warnings <- Warning{Container: containerName, Err: apperr.Wrap(apperr.UnreadableContainer, root, err)}
	}
}

func enumerateArchive(ctx context.Context, path, containerName string, out chan<- Entry, warnings chan<- Warning) {
	r, err := zip.OpenReader(path)
	if err != nil {
		warnings <- Warning{Container: containerName, Err: apperr.Wrap(apperr.UnreadableContainer, path, err)}
		return
	}
	defer r.Close()

	for _, zf := range r.File {
		if ctx.Err() != nil {
			return
		}
		if !strings.HasSuffix(strings.ToLower(zf.Name), ".class") {
			continue
		}
		classPath := strings.TrimSuffix(zf.Name, ".class")
		rc, err := zf.Open()
		if err != nil {
			warnings <- Warning{Container: containerName, Err: apperr.Wrap(apperr.UnreadableContainer, zf.Name, err)}
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			warnings <- Warning{Container: containerName, Err: apperr.Wrap(apperr.UnreadableContainer, zf.Name, err)}
			continue
		}
		entry := Entry{
			ContainerName: containerName,
			ClassPath:     classPath,
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(data)), nil
			},
		}
		select {
		case out <- entry:
		case <-ctx.Done():
			return
		}
	}
}
