package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Extension appended to the name of compressed outputs
const CompressedSuffix = ".xz"

// LineWriter appends newline-terminated lines to a file, optionally through an xz stream
type LineWriter struct {
	path       string
	file       *os.File
	compressor *xz.Writer
	buffer     *bufio.Writer
}

// OpenWriter creates (or truncates) path
func OpenWriter(path string, compress bool) (*LineWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create file %s: %w", path, err)
	}

	writer := &LineWriter{path: path, file: file}
	if compress {
		writer.compressor, err = xz.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("cannot start xz stream on %s: %w", path, err)
		}
		writer.buffer = bufio.NewWriter(writer.compressor)
	} else {
		writer.buffer = bufio.NewWriter(file)
	}

	return writer, nil
}

func (writer *LineWriter) WriteLine(line string) error {
	if _, err := writer.buffer.WriteString(line); err != nil {
		return fmt.Errorf("cannot write to %s: %w", writer.path, err)
	}
	if err := writer.buffer.WriteByte('\n'); err != nil {
		return fmt.Errorf("cannot write to %s: %w", writer.path, err)
	}
	return nil
}

// Close flushes pending lines, finishes the xz stream and closes the file
func (writer *LineWriter) Close() error {
	err := writer.buffer.Flush()
	if writer.compressor != nil {
		err = errors.Join(err, writer.compressor.Close())
	}
	err = errors.Join(err, writer.file.Close())
	if err != nil {
		return fmt.Errorf("cannot close %s: %w", writer.path, err)
	}
	return nil
}

// LineReader reads the lines of a file written by LineWriter. Files ending in CompressedSuffix are decompressed
type LineReader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
}

func OpenReader(path string) (*LineReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file %s: %w", path, err)
	}

	var source io.Reader = file
	if strings.HasSuffix(path, CompressedSuffix) {
		source, err = xz.NewReader(bufio.NewReader(file))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("cannot read xz stream of %s: %w", path, err)
		}
	}

	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &LineReader{path: path, file: file, scanner: scanner}, nil
}

// ReadLine returns the next line, or io.EOF once the file is exhausted
func (reader *LineReader) ReadLine() (string, error) {
	if reader.scanner.Scan() {
		return reader.scanner.Text(), nil
	}
	if err := reader.scanner.Err(); err != nil {
		return "", fmt.Errorf("cannot read %s: %w", reader.path, err)
	}
	return "", io.EOF
}

func (reader *LineReader) Close() error {
	return reader.file.Close()
}

// ReadLines loads every line of a (possibly compressed) file
func ReadLines(path string) ([]string, error) {
	reader, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	lines := make([]string, 0)
	for {
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}
