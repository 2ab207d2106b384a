package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWeightsRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "shogicore-weights-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	const n = 4
	want := []int16{1, -2, 32767, -32768, 0, 100, -100, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	path := filepath.Join(tmpDir, "pp.bin")

	if err := WriteWeights(path, want); err != nil {
		t.Fatalf("WriteWeights: %v", err)
	}
	got, err := ReadWeights(path, n)
	if err != nil {
		t.Fatalf("ReadWeights: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("w[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReadWeightsMissingFile(t *testing.T) {
	_, err := ReadWeights("/nonexistent/pp.bin", 4)
	if !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestAverageWeights(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "shogicore-weights-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	const n = 2
	a := []int16{0, 10, 20, 30}
	b := []int16{4, 10, 20, 40}

	pathA := filepath.Join(tmpDir, "pp_100.bin")
	pathB := filepath.Join(tmpDir, "pp_101.bin")
	if err := WriteWeights(pathA, a); err != nil {
		t.Fatalf("WriteWeights a: %v", err)
	}
	if err := WriteWeights(pathB, b); err != nil {
		t.Fatalf("WriteWeights b: %v", err)
	}

	avg, err := AverageWeights([]string{pathA, pathB}, n)
	if err != nil {
		t.Fatalf("AverageWeights: %v", err)
	}
	want := []int16{2, 10, 20, 35}
	for i := range want {
		if avg[i] != want[i] {
			t.Errorf("avg[%d] = %d, want %d", i, avg[i], want[i])
		}
	}
}

func TestSnapshotAndWeightsPath(t *testing.T) {
	if got := SnapshotPath("/tmp/w", 7); got != "/tmp/w/pp_007.bin" {
		t.Errorf("SnapshotPath = %q", got)
	}
	if got := WeightsPath("/tmp/w"); got != "/tmp/w/pp.bin" {
		t.Errorf("WeightsPath = %q", got)
	}
}
