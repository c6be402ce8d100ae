// Package main times the gitlake CLI with the memory and SQL engines across
// repositories of different sizes and writes the averages to a CSV file.
//
// Prerequisites:
// - gitlake binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the averaged timings of one command on one repository.
type BenchmarkResult struct {
	Repository string
	Command    string
	MemoryTime string
	SQLTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase  string
	Timeout   time.Duration
	Runs      int
	TestRepos []string
	Commands  [][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:  os.Args[1],
		Timeout:   5 * time.Minute,
		Runs:      3,
		TestRepos: []string{"csv-parser", "fd", "git", "kubernetes"},
		Commands: [][]string{
			{"cycle", "--by", "fixed"},
			{"cycle", "--by", "month"},
			{"failure"},
			{"authors"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the gitlake binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gitlake"); err != nil {
		return fmt.Errorf("gitlake binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks times every command with both engines on every repository
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d runs per engine\n",
		len(config.TestRepos), config.Timeout, config.Runs)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)

		for _, args := range config.Commands {
			name := strings.Join(args, " ")
			memory := averageTime(runBenchmark(config, repoPath, args, "memory"))
			sql := averageTime(runBenchmark(config, repoPath, args, "sql"))
			fmt.Printf("  %-20s memory: %s, sql: %s\n", name, memory, sql)
			results = append(results, BenchmarkResult{Repository: repo, Command: name, MemoryTime: memory, SQLTime: sql})
		}
	}

	return results
}

// runBenchmark executes one gitlake command several times and returns the successful timings
func runBenchmark(config BenchmarkConfig, repoPath string, args []string, engine string) []float64 {
	fullArgs := append(append([]string{}, args...), "--engine", engine, "--output", "csv")

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("gitlake", fullArgs...)
		cmd.Dir = repoPath

		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}
	return times
}

// averageTime formats the mean of times, or TIMEOUT when no run succeeded
func averageTime(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/gitlake_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "cmd", "memory_avg", "sql_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Command, result.MemoryTime, result.SQLTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by repository
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	last := ""
	for _, result := range results {
		if result.Repository != last {
			fmt.Printf("%s:\n", result.Repository)
			last = result.Repository
		}
		fmt.Printf("  %-20s: Memory: %s, SQL: %s\n", result.Command, result.MemoryTime, result.SQLTime)
	}
}
