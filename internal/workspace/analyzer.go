/*
Package workspace discovers existing notes under the workspace root and
derives the folder-structure summary used as classification context.

The inbox subtree is excluded (notes waiting there are not already filed),
as is any folder whose name appears in the configured exclusion set.
*/
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Note is a discovered, already-filed note.
type Note struct {
	// Path is the absolute file path.
	Path string

	// RelPath is the path relative to the workspace root, slash-separated.
	RelPath string

	// Folder is the folder portion of RelPath ("" for root-level notes).
	Folder string

	// Content is the full note text.
	Content string

	// Size is the file size in bytes.
	Size int64
}

// WordCount returns the whitespace-delimited word count of the note content.
func (n Note) WordCount() int {
	return len(strings.Fields(n.Content))
}

// Analysis is the result of one workspace scan.
type Analysis struct {
	// Notes are the discovered notes with classification signal.
	Notes []Note

	// SkippedShort counts files below the minimum content length.
	SkippedShort int
}

// Analyzer walks a workspace root for candidate note files.
type Analyzer struct {
	// Root is the workspace root directory.
	Root string

	// Inbox is the staging directory to exclude from discovery.
	Inbox string

	// ExcludedFolders are folder names skipped anywhere in the path.
	ExcludedFolders []string

	// Extensions are the eligible file extensions (with leading dot).
	Extensions []string

	// MinContentLength is the minimum trimmed content length for a file
	// to carry classification signal.
	MinContentLength int
}

// Eligible reports whether path has an eligible note extension.
func (a *Analyzer) Eligible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range a.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan walks the workspace and returns the discovered notes. Files below
// the minimum content length are skipped and counted, not returned.
func (a *Analyzer) Scan(ctx context.Context) (*Analysis, error) {
	root, err := filepath.Abs(a.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	inbox, err := filepath.Abs(a.Inbox)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inbox: %w", err)
	}

	analysis := &Analysis{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", path, err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path == inbox {
				return filepath.SkipDir
			}
			for _, excluded := range a.ExcludedFolders {
				if d.Name() == excluded {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !a.Eligible(path) {
			return nil
		}

		content, err := ReadText(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if ContentLength(content) < a.MinContentLength {
			analysis.SkippedShort++
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		folder := filepath.ToSlash(filepath.Dir(relPath))
		if folder == "." {
			folder = ""
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		analysis.Notes = append(analysis.Notes, Note{
			Path:    path,
			RelPath: relPath,
			Folder:  folder,
			Content: content,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return analysis, nil
}

// FolderSummary renders the folder -> note count digest, sorted by count
// descending, that is supplied verbatim as classification context.
func (a *Analysis) FolderSummary() string {
	counts := make(map[string]int)
	for _, n := range a.Notes {
		if n.Folder == "" {
			continue
		}
		counts[n.Folder]++
	}

	folders := make([]string, 0, len(counts))
	for f := range counts {
		folders = append(folders, f)
	}
	sort.Slice(folders, func(i, j int) bool {
		if counts[folders[i]] != counts[folders[j]] {
			return counts[folders[i]] > counts[folders[j]]
		}
		return folders[i] < folders[j]
	})

	var b strings.Builder
	for _, f := range folders {
		fmt.Fprintf(&b, "%s: %d notes\n", f, counts[f])
	}
	return b.String()
}
