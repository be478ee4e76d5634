package resolve

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// sequenceExtensions are the file endings treated as sequence data. Checked
// as suffixes because filepath.Ext only sees the ".gz" of compound names.
var sequenceExtensions = []string{".fastq", ".fq", ".fastq.gz", ".fq.gz"}

// pairPatterns mark a file as the forward read of a pair. Order matters: the
// first matching pattern decides the expected mate name.
var pairPatterns = []*regexp.Regexp{
	regexp.MustCompile(`_R1[._]`),
	regexp.MustCompile(`_1\.`),
	regexp.MustCompile(`_forward`),
	regexp.MustCompile(`_f\.`),
}

// readSuffixRe strips the read marker and everything after it when deriving a
// sample name from a forward-read filename.
var readSuffixRe = regexp.MustCompile(`_R?[12]\..*$`)

// ReadPair is a forward read and its reverse mate. Unpaired files carry only
// Forward.
type ReadPair struct {
	Forward string
	Reverse string
}

// Paired reports whether the pair has both reads.
func (p ReadPair) Paired() bool {
	return p.Reverse != ""
}

// SampleName derives a sample identifier from the forward read's base name by
// stripping the read marker and extensions.
func (p ReadPair) SampleName() string {
	return readSuffixRe.ReplaceAllString(filepath.Base(p.Forward), "")
}

// HasSequenceExtension reports whether the name looks like sequence data.
func HasSequenceExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range sequenceExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ScanSequenceDir collects the sequence files under dir, optionally walking
// subdirectories. Paths come back joined to dir in lexical order.
func ScanSequenceDir(dir string, recursive bool) ([]string, error) {
	var files []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && HasSequenceExtension(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && HasSequenceExtension(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// PairReads groups a file list into read pairs. A file whose base name
// carries a forward marker claims the file whose base name equals the derived
// mate name; the first claim wins. Files that neither carry a forward marker
// nor match an expected mate come back unpaired, followed by forward reads
// whose mate never showed up.
func PairReads(files []string) []ReadPair {
	type forward struct {
		path     string
		expected string
		mate     string
	}

	var forwards []*forward
	var rest []string
	for _, path := range files {
		name := filepath.Base(path)
		var matched *regexp.Regexp
		for _, re := range pairPatterns {
			if re.MatchString(name) {
				matched = re
				break
			}
		}
		if matched == nil {
			rest = append(rest, path)
			continue
		}
		forwards = append(forwards, &forward{
			path:     path,
			expected: matched.ReplaceAllStringFunc(name, mateMarker),
		})
	}

	var unpaired []string
	for _, path := range rest {
		name := filepath.Base(path)
		claimed := false
		for _, f := range forwards {
			if f.mate == "" && name == f.expected {
				f.mate = path
				claimed = true
				break
			}
		}
		if !claimed {
			unpaired = append(unpaired, path)
		}
	}

	var pairs []ReadPair
	var lone []string
	for _, f := range forwards {
		if f.mate != "" {
			pairs = append(pairs, ReadPair{Forward: f.path, Reverse: f.mate})
		} else {
			lone = append(lone, f.path)
		}
	}
	for _, path := range append(unpaired, lone...) {
		pairs = append(pairs, ReadPair{Forward: path})
	}
	return pairs
}

// mateMarker rewrites a forward-read marker into its reverse form: _R1. to
// _R2., _1. to _2., _forward to _reverse, _f. to _r.
func mateMarker(match string) string {
	if strings.Contains(match, "1") {
		return strings.ReplaceAll(match, "1", "2")
	}
	if strings.Contains(match, "forward") {
		return strings.ReplaceAll(match, "forward", "reverse")
	}
	return strings.ReplaceAll(match, "f.", "r.")
}
