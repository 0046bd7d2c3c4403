package hardware

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/zmk-tools/zmk-cli/internal/manifest"
	"github.com/zmk-tools/zmk-cli/internal/repo"
)

// Source is one board root to scan, attributed to the module that owns it.
type Source struct {
	Module string
	Dir    string
}

// Scan walks each source's directory tree for hardware metadata files and
// builds the catalog. Sources are scanned in order and later sources
// overwrite earlier definitions of the same (kind, id); pass sources in
// manifest order so the documented later-module-wins override applies.
//
// Individual files that fail to parse are skipped and recorded as warnings.
// There is no cross-call cache: every call re-reads the tree.
func Scan(sources []Source) *Catalog {
	cat := newCatalog()

	for _, src := range sources {
		for _, path := range metadataFiles(src.Dir) {
			p, ok := parserFor(filepath.Base(path))
			if !ok {
				continue
			}

			data, err := os.ReadFile(path)
			if err != nil {
				cat.Warnings = append(cat.Warnings, Warning{Path: path, Err: err})
				slog.Warn("skipping unreadable hardware metadata", "path", path, "error", err)
				continue
			}

			h, err := p.Parse(path, data)
			if err != nil {
				cat.Warnings = append(cat.Warnings, Warning{Path: path, Err: err})
				slog.Warn("skipping invalid hardware metadata", "path", path, "error", err)
				continue
			}

			h.Directory = filepath.Dir(path)
			h.Module = src.Module
			cat.put(h)
		}
	}

	return cat
}

// ScanWorkspace scans the repo's own board root followed by every module in
// manifest order, so module definitions override same-named repo definitions
// and later modules override earlier ones.
func ScanWorkspace(r *repo.Repo, entries []manifest.Entry) *Catalog {
	return Scan(WorkspaceSources(r, entries))
}

// WorkspaceSources enumerates the board roots of a workspace in scan order.
func WorkspaceSources(r *repo.Repo, entries []manifest.Entry) []Source {
	var sources []Source

	if root, ok := r.BoardRoot(); ok {
		sources = append(sources, Source{Module: "config", Dir: root})
	}

	for _, e := range entries {
		mod := r.ModuleAt(e.Name, e.CheckoutPath())
		if root, ok := mod.BoardRoot(); ok {
			sources = append(sources, Source{Module: e.Name, Dir: root})
		}
	}

	return sources
}

// metadataFiles returns every metadata file under root in deterministic
// (lexical) order. Walk errors are ignored; an unreadable subtree simply
// contributes nothing.
func metadataFiles(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if _, ok := parserFor(d.Name()); ok {
				files = append(files, path)
			}
		}
		return nil
	})
	sort.Strings(files)
	return files
}
