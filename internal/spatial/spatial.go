// Package spatial computes stable content fingerprints and locates code by
// what it is rather than where it lives: normalize text, hash it, and slide
// a window across a tree to find where a fingerprint reappears.
package spatial

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

// recognizedSuffixes bounds find_by_hash to source-like files; auditor
// queries over binary blobs or lockfiles are not useful and are expensive
// given the O(files x window-sizes x lines) search.
var recognizedSuffixes = []string{
	".go", ".ts", ".tsx", ".js", ".jsx", ".py", ".rb", ".java", ".c", ".h",
	".cpp", ".cc", ".hpp", ".rs", ".md", ".yaml", ".yml", ".json", ".sh",
}

// windowSizes is the fixed sliding-window ladder: 5, 10, 15, ..., 50 lines.
var windowSizes = func() []int {
	sizes := make([]int, 0, 10)
	for n := 5; n <= 50; n += 5 {
		sizes = append(sizes, n)
	}
	return sizes
}()

// Match is one hit returned by FindByHash.
type Match struct {
	Path      string
	StartLine int
	EndLine   int
	Content   string
}

// Normalize splits text on LF, strips trailing horizontal whitespace from
// each line, rejoins with LF, then outer-trims the result.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Hash returns the hex-encoded SHA-256 of Normalize(text).
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// HashBlock hashes the inclusive, 1-indexed line range [start, end] of the
// file at path.
func HashBlock(path string, start, end int) (string, error) {
	lines, err := readLines(path)
	if err != nil {
		return "", err
	}
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return Hash(""), nil
	}
	return Hash(strings.Join(lines[start-1:end], "\n")), nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

func isRecognized(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, suffix := range recognizedSuffixes {
		if ext == suffix {
			return true
		}
	}
	return false
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// FindByHash walks searchRoots looking for a block of text whose normalized
// hash equals target. It is deliberately O(files x window-sizes x lines):
// built for auditor queries ("where did this code come from"), not the hot
// path.
func FindByHash(target string, searchRoots []string) []Match {
	var matches []Match
	for _, root := range searchRoots {
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if skipDir(info.Name()) && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !isRecognized(path) {
				return nil
			}
			matches = append(matches, findInFile(path, target)...)
			return nil
		})
	}
	return matches
}

func findInFile(path, target string) []Match {
	lines, err := readLines(path)
	if err != nil {
		return nil
	}

	var found []Match
	for _, size := range windowSizes {
		if size > len(lines) {
			continue
		}
		for start := 0; start+size <= len(lines); start++ {
			block := strings.Join(lines[start:start+size], "\n")
			if Hash(block) == target {
				found = append(found, Match{
					Path:      path,
					StartLine: start + 1,
					EndLine:   start + size,
					Content:   block,
				})
				break // advance to the next window size
			}
		}
	}
	return found
}
