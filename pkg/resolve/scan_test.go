package resolve

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSequenceExtension(t *testing.T) {
	cases := map[string]bool{
		"S1_R1.fastq":      true,
		"S1_R1.fq":         true,
		"S1_R1.fastq.gz":   true,
		"S1_R1.FASTQ.GZ":   true,
		"S1_R1.fasta":      false,
		"notes.txt":        false,
		"archive.tar.gz":   false,
		"S1_R1.fastq.gzip": false,
	}
	for name, want := range cases {
		assert.Equal(t, want, HasSequenceExtension(name), name)
	}
}

func TestScanSequenceDir(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "b.fq.gz", "a.fastq", "notes.txt", filepath.Join("sub", "c.fastq.gz"))

	flat, err := ScanSequenceDir(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.fastq"),
		filepath.Join(dir, "b.fq.gz"),
	}, flat)

	deep, err := ScanSequenceDir(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.fastq"),
		filepath.Join(dir, "b.fq.gz"),
		filepath.Join(dir, "sub", "c.fastq.gz"),
	}, deep)
}

func TestScanSequenceDirMissing(t *testing.T) {
	_, err := ScanSequenceDir(filepath.Join(t.TempDir(), "absent"), true)
	assert.Error(t, err)
}

func TestPairReads(t *testing.T) {
	files := []string{
		"/seq/S1_R1.fastq.gz",
		"/seq/S1_R2.fastq.gz",
		"/seq/S2_1.fq",
		"/seq/S2_2.fq",
		"/seq/lonely.fastq",
		"/seq/S3_R1.fastq",
	}

	pairs := PairReads(files)
	require.Len(t, pairs, 4)

	assert.Equal(t, ReadPair{Forward: "/seq/S1_R1.fastq.gz", Reverse: "/seq/S1_R2.fastq.gz"}, pairs[0])
	assert.Equal(t, ReadPair{Forward: "/seq/S2_1.fq", Reverse: "/seq/S2_2.fq"}, pairs[1])
	// Unpaired files follow the matched pairs: plain singles first, then
	// forward reads whose mate never showed up.
	assert.Equal(t, ReadPair{Forward: "/seq/lonely.fastq"}, pairs[2])
	assert.Equal(t, ReadPair{Forward: "/seq/S3_R1.fastq"}, pairs[3])

	assert.True(t, pairs[0].Paired())
	assert.False(t, pairs[2].Paired())
}

func TestPairReadsMarkerVariants(t *testing.T) {
	cases := []struct {
		forward string
		reverse string
	}{
		{"x_R1.fastq", "x_R2.fastq"},
		{"x_R1_001.fastq", "x_R2_001.fastq"},
		{"x_1.fastq", "x_2.fastq"},
		{"x_forward.fastq", "x_reverse.fastq"},
		{"x_f.fastq", "x_r.fastq"},
	}
	for _, tc := range cases {
		pairs := PairReads([]string{tc.forward, tc.reverse})
		require.Len(t, pairs, 1, tc.forward)
		assert.Equal(t, tc.forward, pairs[0].Forward)
		assert.Equal(t, tc.reverse, pairs[0].Reverse)
	}
}

func TestPairReadsSameBasenameDifferentDirs(t *testing.T) {
	// Two runs of the same library in different directories: each forward
	// read keeps its own pairing slot, and a mate attaches to the first
	// unclaimed forward with the expected name.
	files := []string{
		"/run1/S1_R1.fq",
		"/run2/S1_R1.fq",
		"/run1/S1_R2.fq",
		"/run2/S1_R2.fq",
	}
	pairs := PairReads(files)
	require.Len(t, pairs, 2)
	assert.Equal(t, ReadPair{Forward: "/run1/S1_R1.fq", Reverse: "/run1/S1_R2.fq"}, pairs[0])
	assert.Equal(t, ReadPair{Forward: "/run2/S1_R1.fq", Reverse: "/run2/S1_R2.fq"}, pairs[1])
}

func TestReadPairSampleName(t *testing.T) {
	cases := map[string]string{
		"/seq/S5_R1.fastq.gz": "S5",
		"/seq/S6_1.fq":        "S6",
		"/seq/gut_A_R1.fastq": "gut_A",
		"/seq/weird.fastq":    "weird.fastq",
	}
	for forward, want := range cases {
		assert.Equal(t, want, ReadPair{Forward: forward}.SampleName(), forward)
	}
}
