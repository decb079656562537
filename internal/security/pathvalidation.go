// Package security guards the names of files written by an export.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when an output name escapes its directory.
var ErrPathTraversal = errors.New("path traversal detected")

// JoinWithinDirectory joins name onto dir and checks that the result stays
// inside dir. The check is lexical so it applies equally to the in-memory
// filesystem used by tests.
func JoinWithinDirectory(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s is absolute", ErrPathTraversal, name)
	}
	cleanDir := filepath.Clean(dir)
	joined := filepath.Join(cleanDir, name)

	rel, err := filepath.Rel(cleanDir, joined)
	if err != nil {
		return "", fmt.Errorf("path is outside output directory: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s attempts to escape %s", ErrPathTraversal, name, dir)
	}
	return joined, nil
}

// SanitizeFilename makes a safe file name component from an arbitrary string,
// such as an input file stem or a gas symbol. Characters other than ASCII
// letters, digits, dot, underscore or dash are replaced with an underscore
// and runs of underscores are collapsed.
func SanitizeFilename(s string) string {
	const maxLen = 128

	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
