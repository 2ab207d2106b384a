package storage

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ReadWeights loads a raw little-endian int16 matrix of n*n elements from
// path. Returns os.ErrNotExist (wrapped) if the file does not exist, which
// callers treat as "start from a zero-initialized tensor".
func ReadWeights(path string, n int) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w := make([]int16, n*n)
	if err := binary.Read(f, binary.LittleEndian, w); err != nil {
		return nil, fmt.Errorf("storage: read weights %s: %w", path, err)
	}
	return w, nil
}

// WriteWeights dumps w as a raw little-endian int16 matrix to path.
func WriteWeights(path string, w []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, w); err != nil {
		return fmt.Errorf("storage: write weights %s: %w", path, err)
	}
	return nil
}

// AverageWeights reads each of paths as an n*n int16 matrix, sums them in a
// 32-bit accumulator, and divides element-wise by len(paths) with
// round-to-nearest. Used offline for Polyak-averaging training snapshots.
// A missing or malformed snapshot file aborts the whole average with an
// error; no partial result is returned.
func AverageWeights(paths []string, n int) ([]int16, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("storage: no snapshot paths given")
	}

	size := n * n
	acc := make([]int32, size)

	for _, p := range paths {
		w, err := ReadWeights(p, n)
		if err != nil {
			return nil, fmt.Errorf("storage: averaging requires %s: %w", p, err)
		}
		for i, v := range w {
			acc[i] += int32(v)
		}
	}

	count := int32(len(paths))
	out := make([]int16, size)
	for i, v := range acc {
		out[i] = int16(roundDiv(v, count))
	}
	return out, nil
}

func roundDiv(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	if (a < 0) != (b < 0) {
		return -roundDiv(-a, b)
	}
	return (a + b/2) / b
}

// SnapshotPath builds the pp_NNN.bin filename for a snapshot number in
// [100, 999].
func SnapshotPath(dir string, n int) string {
	return fmt.Sprintf("%s/pp_%03d.bin", dir, n)
}

// WeightsPath builds the canonical pp.bin path within dir.
func WeightsPath(dir string) string {
	return dir + "/pp.bin"
}
