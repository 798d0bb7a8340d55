package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/limaJavier/matroids/pkg/storage"
	"github.com/samber/lo"
)

const (
	executablePath = "../../bin/matroids"
	outputRoot     = "benchmark_output"
)

type LevelMetadata struct {
	N, R int
}

type BenchmarkResult struct {
	Level         LevelMetadata
	Threads       int
	Matroids      int
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Digest        uint64
}

func main() {
	maxThreadsPtr := flag.Int("threads", 8, "Largest number of threads to measure (powers of two up to this value are used)")
	flag.Parse()

	levels := getLevels()
	threadCounts := getThreadCounts(*maxThreadsPtr)
	results := make([]BenchmarkResult, 0, len(levels)*len(threadCounts))

	for _, level := range levels {
		for _, threads := range threadCounts {
			fmt.Printf("Benchmarking level n = %v, r = %v with %v threads\n", level.N, level.R, threads)

			results = append(results, measure(level, threads))
		}

		// Every thread count must produce the same output
		digests := lo.Uniq(lo.FilterMap(results, func(result BenchmarkResult, _ int) (uint64, bool) {
			return result.Digest, result.Level == level
		}))
		if len(digests) != 1 {
			log.Fatalf("outputs of level n = %v, r = %v differ across thread counts: %v", level.N, level.R, digests)
		}
	}

	toCsv(results)
}

func getLevels() []LevelMetadata {
	return []LevelMetadata{
		{N: 7, R: 3},
		{N: 8, R: 3},
		{N: 8, R: 4},
		{N: 9, R: 3},
	}
}

func getThreadCounts(maxThreads int) []int {
	counts := make([]int, 0)
	for threads := 1; threads <= maxThreads; threads *= 2 {
		counts = append(counts, threads)
	}
	return counts
}

func measure(level LevelMetadata, threads int) BenchmarkResult {
	outputDir := filepath.Join(outputRoot, fmt.Sprintf("threads%02d", threads))
	cmd := exec.Command("/usr/bin/time", "-v", executablePath, "--output-dir", outputDir, "--file", fmt.Sprint(level.N), fmt.Sprint(level.R), fmt.Sprint(threads))

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	if cmd.ProcessState.ExitCode() != 0 {
		log.Fatalf("an error occurred during the execution of \"matroids\" at level n = %v, r = %v with %v threads: %v\n", level.N, level.R, threads, stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	lines, err := storage.ReadLines(filepath.Join(outputDir, fmt.Sprintf("n%02dr%02d", level.N, level.R)))
	if err != nil {
		log.Fatalf("cannot read output: %v", err)
	}

	return BenchmarkResult{
		Level:         level,
		Threads:       threads,
		Matroids:      len(lines),
		Duration:      parseDurationLine(getLine("wall clock")),
		Memory:        parseMemoryLine(getLine("maximum resident set size")),
		CpuPercentage: parseCpuPercentageLine(getLine("percent of cpu")),
		Digest:        digest(lines),
	}
}

func digest(lines []string) uint64 {
	hash := xxhash.New()
	for _, line := range lines {
		hash.WriteString(line)
		hash.WriteString("\n")
	}
	return hash.Sum64()
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"n", "r", "Threads", "Matroids", "Duration(ms)", "Speedup", "Memory(MB)", "CPU(%)", "Digest"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		sequential, _ := lo.Find(results, func(other BenchmarkResult) bool {
			return other.Level == result.Level && other.Threads == 1
		})
		record := []string{
			fmt.Sprintf("%d", result.Level.N),
			fmt.Sprintf("%d", result.Level.R),
			fmt.Sprintf("%d", result.Threads),
			fmt.Sprintf("%d", result.Matroids),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.2f", speedup(sequential.Duration, result.Duration)),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
			fmt.Sprintf("%016x", result.Digest),
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func speedup(sequential, parallel int64) float64 {
	if parallel == 0 {
		return 0
	}
	return float64(sequential) / float64(parallel)
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / 1024
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
