package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// NewFileSink writes one partition file per worker into directory (nXXrYY-threadZZ) and merges them into
// directory/nXXrYY, or nXXrYY.xz when compress is set. Partitions are deleted after a successful merge or a Discard
func NewFileSink(directory string, n, r int, compress bool) Sink {
	return &fileSink{directory: directory, n: n, r: r, compress: compress}
}

type fileSink struct {
	directory string
	n, r      int
	compress  bool

	paths   []string
	writers []*LineWriter
}

func (sink *fileSink) Open(workers int) error {
	if workers < 1 {
		return fmt.Errorf("a sink needs at least one worker but got %d", workers)
	}
	if err := os.MkdirAll(sink.directory, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", sink.directory, err)
	}

	sink.paths = make([]string, 0, workers)
	sink.writers = make([]*LineWriter, workers)
	for worker := range workers {
		path := filepath.Join(sink.directory, partitionName(sink.n, sink.r, worker))
		writer, err := OpenWriter(path, false)
		if err != nil {
			return errors.Join(err, sink.Discard())
		}
		sink.paths = append(sink.paths, path)
		sink.writers[worker] = writer
	}
	return nil
}

func (sink *fileSink) Append(worker int, record Record) error {
	return sink.writers[worker].WriteLine(record.String())
}

func (sink *fileSink) Merge(trailer []string) (MergeResult, error) {
	if err := sink.closeWriters(); err != nil {
		return MergeResult{}, err
	}

	readers := make([]*LineReader, 0, len(sink.paths))
	defer func() {
		for _, reader := range readers {
			reader.Close()
		}
	}()

	partitions := make([]partition, 0, len(sink.paths))
	for _, path := range sink.paths {
		reader, err := OpenReader(path)
		if err != nil {
			return MergeResult{}, err
		}
		readers = append(readers, reader)
		partitions = append(partitions, &filePartition{reader: reader})
	}

	path := filepath.Join(sink.directory, mergedName(partitionName(sink.n, sink.r, 0)))
	if sink.compress {
		path += CompressedSuffix
	}
	output, err := OpenWriter(path, sink.compress)
	if err != nil {
		return MergeResult{}, err
	}

	result, err := merge(partitions, trailer, output.WriteLine)
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path) // Never leave a truncated output behind
		return MergeResult{}, fmt.Errorf("cannot merge partitions into %s: %w", path, err)
	}

	for _, partitionPath := range sink.paths {
		if err := os.Remove(partitionPath); err != nil {
			return MergeResult{}, fmt.Errorf("cannot delete partition %s: %w", partitionPath, err)
		}
	}
	sink.paths = nil

	result.Path = path
	return result, nil
}

func (sink *fileSink) Discard() error {
	err := sink.closeWriters()
	for _, path := range sink.paths {
		if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("cannot delete partition %s: %w", path, removeErr))
		}
	}
	sink.paths = nil
	return err
}

func (sink *fileSink) closeWriters() error {
	var err error
	for i, writer := range sink.writers {
		if writer != nil {
			err = errors.Join(err, writer.Close())
			sink.writers[i] = nil
		}
	}
	return err
}

type filePartition struct {
	reader *LineReader
}

func (p *filePartition) next() (Record, error) {
	line, err := p.reader.ReadLine()
	if err != nil {
		return Record{}, err // io.EOF included
	}
	return parseRecord(line)
}
