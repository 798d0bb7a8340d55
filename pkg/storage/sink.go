package storage

import (
	"container/heap"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var ErrMalformedRecord = errors.New("malformed partition record")

// Record is one accepted extension together with the index of the matroid it extends
type Record struct {
	Indicator string
	Source    int
}

func (record Record) String() string {
	return record.Indicator + " " + strconv.Itoa(record.Source)
}

func parseRecord(line string) (Record, error) {
	indicator, source, found := strings.Cut(line, " ")
	if !found {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}
	index, err := strconv.Atoi(source)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q: %w", ErrMalformedRecord, line, err)
	}
	return Record{Indicator: indicator, Source: index}, nil
}

// Sink collects the records of one level from several workers and emits them in source order.
// Worker w must append the records of its sources in increasing source order and only from its own goroutine.
type Sink interface {
	// Prepares one partition per worker
	Open(workers int) error
	Append(worker int, record Record) error
	// Merges the partitions by source, writes the trailer lines after them and releases the partitions
	Merge(trailer []string) (MergeResult, error)
	// Releases the partitions of a level that will not be merged. Safe to call after a failed Merge
	Discard() error
}

type MergeResult struct {
	Records int    // lines written, trailer included
	Digest  uint64 // xxhash of the written lines
	Path    string // empty unless the output is a file
}

// partitionName returns "nXXrYY-threadZZ"
func partitionName(n, r, worker int) string {
	return fmt.Sprintf("n%02dr%02d-thread%02d", n, r, worker)
}

// mergedName truncates a partition name at its first '-'
func mergedName(partition string) string {
	name, _, _ := strings.Cut(partition, "-")
	return name
}

// partition yields its records in the order they were appended
type partition interface {
	next() (Record, error) // io.EOF when exhausted
}

type cursor struct {
	record    Record
	partition int
}

type cursorQueue []cursor

func (queue cursorQueue) Len() int { return len(queue) }

func (queue cursorQueue) Less(i, j int) bool {
	if queue[i].record.Source != queue[j].record.Source {
		return queue[i].record.Source < queue[j].record.Source
	}
	return queue[i].partition < queue[j].partition
}

func (queue cursorQueue) Swap(i, j int) { queue[i], queue[j] = queue[j], queue[i] }

func (queue *cursorQueue) Push(x any) { *queue = append(*queue, x.(cursor)) }

func (queue *cursorQueue) Pop() any {
	old := *queue
	last := old[len(old)-1]
	*queue = old[:len(old)-1]
	return last
}

// merge performs a k-way merge of the partitions by source index and emits every indicator, then the trailer
func merge(partitions []partition, trailer []string, emit func(line string) error) (MergeResult, error) {
	digest := xxhash.New()
	result := MergeResult{}

	write := func(line string) error {
		if err := emit(line); err != nil {
			return err
		}
		digest.WriteString(line)
		digest.Write([]byte{'\n'})
		result.Records++
		return nil
	}

	queue := make(cursorQueue, 0, len(partitions))
	advance := func(index int) error {
		record, err := partitions[index].next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		heap.Push(&queue, cursor{record: record, partition: index})
		return nil
	}

	for i := range partitions {
		if err := advance(i); err != nil {
			return MergeResult{}, err
		}
	}

	for queue.Len() > 0 {
		current := heap.Pop(&queue).(cursor)
		if err := write(current.record.Indicator); err != nil {
			return MergeResult{}, err
		}
		if err := advance(current.partition); err != nil {
			return MergeResult{}, err
		}
	}

	for _, line := range trailer {
		if err := write(line); err != nil {
			return MergeResult{}, err
		}
	}

	result.Digest = digest.Sum64()
	return result, nil
}
