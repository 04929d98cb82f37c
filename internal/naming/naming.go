// Package naming maps input sticker paths to output WebP paths and resolves
// collisions between inputs that would claim the same output file.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPath builds the output file path for inputPath: the path relative to
// inputRoot is mirrored under outputDir with the extension swapped to .webp.
// An input outside inputRoot (single-file mode with an odd root) falls back
// to its basename.
func OutputPath(inputPath, inputRoot, outputDir string) string {
	rel, err := filepath.Rel(inputRoot, inputPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(inputPath)
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outputDir, stem+".webp")
}

// CollisionResolver tracks output paths claimed by input files and resolves
// duplicates by appending " - dupN" suffixes (e.g. when a.tgs and a.json
// both map to a.webp). Conversions are sequential, so no locking.
type CollisionResolver struct {
	owners   map[string]string // output path -> input path that owns it
	counters map[string]int    // base output path -> next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output path for input. If requestedOutput is
// unclaimed (or already owned by input), it is returned as-is; otherwise a
// " - dupN" variant is generated.
func (cr *CollisionResolver) Resolve(input, requestedOutput string) string {
	owner, exists := cr.owners[requestedOutput]
	if !exists || owner == input {
		cr.owners[requestedOutput] = input
		return requestedOutput
	}

	dir := filepath.Dir(requestedOutput)
	base := filepath.Base(requestedOutput)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[requestedOutput]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == input {
			cr.counters[requestedOutput] = counter + 1
			cr.owners[candidate] = input
			return candidate
		}
		counter++
	}
}
