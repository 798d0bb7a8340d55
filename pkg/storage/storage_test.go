package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	. "github.com/onsi/gomega"
)

// appendScenario distributes the records of sources 0..5 over three workers the way a pool would
func appendScenario(g *WithT, sink Sink) {
	g.Expect(sink.Open(3)).To(Succeed())

	g.Expect(sink.Append(1, Record{Indicator: "a1", Source: 1})).To(Succeed())
	g.Expect(sink.Append(0, Record{Indicator: "a0", Source: 0})).To(Succeed())
	g.Expect(sink.Append(0, Record{Indicator: "b0", Source: 0})).To(Succeed())
	g.Expect(sink.Append(2, Record{Indicator: "a2", Source: 2})).To(Succeed())
	g.Expect(sink.Append(2, Record{Indicator: "a5", Source: 5})).To(Succeed())
	g.Expect(sink.Append(0, Record{Indicator: "a3", Source: 3})).To(Succeed())
	g.Expect(sink.Append(1, Record{Indicator: "a4", Source: 4})).To(Succeed())
	g.Expect(sink.Append(1, Record{Indicator: "b4", Source: 4})).To(Succeed())
}

var expectedLines = []string{"a0", "b0", "a1", "a2", "a3", "a4", "b4", "a5", "t0", "t1"}

func expectedDigest() uint64 {
	var buffer bytes.Buffer
	for _, line := range expectedLines {
		buffer.WriteString(line + "\n")
	}
	return xxhash.Sum64(buffer.Bytes())
}

func TestWriterSink(t *testing.T) {
	g := NewWithT(t)

	//** Arrange
	var output bytes.Buffer
	sink := NewWriterSink(&output)
	appendScenario(g, sink)

	//** Act
	result, err := sink.Merge([]string{"t0", "t1"})

	//** Assert
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(output.String()).To(Equal("a0\nb0\na1\na2\na3\na4\nb4\na5\nt0\nt1\n"))
	g.Expect(result.Records).To(Equal(len(expectedLines)))
	g.Expect(result.Digest).To(Equal(expectedDigest()))
	g.Expect(result.Path).To(BeEmpty())
}

func TestFileSink(t *testing.T) {
	for _, compress := range []bool{false, true} {
		g := NewWithT(t)

		//** Arrange
		directory := filepath.Join(t.TempDir(), "output")
		sink := NewFileSink(directory, 5, 2, compress)
		appendScenario(g, sink)
		g.Expect(filepath.Join(directory, "n05r02-thread01")).To(BeAnExistingFile())

		//** Act
		result, err := sink.Merge([]string{"t0", "t1"})

		//** Assert
		g.Expect(err).NotTo(HaveOccurred())
		expectedPath := filepath.Join(directory, "n05r02")
		if compress {
			expectedPath += CompressedSuffix
		}
		g.Expect(result.Path).To(Equal(expectedPath))
		g.Expect(result.Digest).To(Equal(expectedDigest()))

		lines, err := ReadLines(result.Path)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(lines).To(Equal(expectedLines))

		entries, err := os.ReadDir(directory)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(entries).To(HaveLen(1)) // Partitions are gone
	}
}

func TestMergeFailsOnMalformedPartition(t *testing.T) {
	g := NewWithT(t)

	//** Arrange
	directory := t.TempDir()
	sink := NewFileSink(directory, 4, 2, false)
	g.Expect(sink.Open(1)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(directory, "n04r02-thread00"), []byte("***\n"), 0o644)).To(Succeed())

	//** Act
	_, err := sink.Merge(nil)

	//** Assert
	g.Expect(err).To(MatchError(ErrMalformedRecord))
	g.Expect(filepath.Join(directory, "n04r02")).NotTo(BeAnExistingFile())

	g.Expect(sink.Discard()).To(Succeed())
	g.Expect(filepath.Join(directory, "n04r02-thread00")).NotTo(BeAnExistingFile())
}

func TestDiscard(t *testing.T) {
	t.Run("File sink", func(t *testing.T) {
		g := NewWithT(t)

		//** Arrange
		directory := t.TempDir()
		sink := NewFileSink(directory, 5, 2, false)
		appendScenario(g, sink)

		//** Act
		err := sink.Discard()

		//** Assert
		g.Expect(err).NotTo(HaveOccurred())
		entries, err := os.ReadDir(directory)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(entries).To(BeEmpty())
		g.Expect(sink.Discard()).To(Succeed())
	})

	t.Run("Writer sink", func(t *testing.T) {
		g := NewWithT(t)

		var output bytes.Buffer
		sink := NewWriterSink(&output)
		appendScenario(g, sink)

		g.Expect(sink.Discard()).To(Succeed())
		g.Expect(output.Len()).To(BeZero())
	})
}

func TestLineWriterRoundTrip(t *testing.T) {
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "lines"+CompressedSuffix)
	writer, err := OpenWriter(path, true)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(writer.WriteLine("0**")).To(Succeed())
	g.Expect(writer.WriteLine("***")).To(Succeed())
	g.Expect(writer.Close()).To(Succeed())

	lines, err := ReadLines(path)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(lines).To(Equal([]string{"0**", "***"}))
}

func TestNames(t *testing.T) {
	g := NewWithT(t)

	g.Expect(partitionName(7, 3, 12)).To(Equal("n07r03-thread12"))
	g.Expect(mergedName(partitionName(7, 3, 12))).To(Equal("n07r03"))
}
