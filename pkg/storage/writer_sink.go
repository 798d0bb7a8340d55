package storage

import (
	"bufio"
	"fmt"
	"io"
)

// NewWriterSink keeps the partitions in memory and writes one indicator per line to writer when merging
func NewWriterSink(writer io.Writer) Sink {
	return &writerSink{writer: writer}
}

type writerSink struct {
	writer     io.Writer
	partitions [][]Record
}

func (sink *writerSink) Open(workers int) error {
	if workers < 1 {
		return fmt.Errorf("a sink needs at least one worker but got %d", workers)
	}
	sink.partitions = make([][]Record, workers)
	return nil
}

func (sink *writerSink) Append(worker int, record Record) error {
	sink.partitions[worker] = append(sink.partitions[worker], record)
	return nil
}

func (sink *writerSink) Merge(trailer []string) (MergeResult, error) {
	partitions := make([]partition, len(sink.partitions))
	for i, records := range sink.partitions {
		partitions[i] = &memoryPartition{records: records}
	}

	buffer := bufio.NewWriter(sink.writer)
	result, err := merge(partitions, trailer, func(line string) error {
		if _, err := buffer.WriteString(line); err != nil {
			return err
		}
		return buffer.WriteByte('\n')
	})
	if err != nil {
		return MergeResult{}, fmt.Errorf("cannot write merged output: %w", err)
	}
	if err := buffer.Flush(); err != nil {
		return MergeResult{}, fmt.Errorf("cannot write merged output: %w", err)
	}

	sink.partitions = nil
	return result, nil
}

func (sink *writerSink) Discard() error {
	sink.partitions = nil
	return nil
}

type memoryPartition struct {
	records  []Record
	position int
}

func (p *memoryPartition) next() (Record, error) {
	if p.position >= len(p.records) {
		return Record{}, io.EOF
	}
	record := p.records[p.position]
	p.position++
	return record, nil
}
