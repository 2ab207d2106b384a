package learn

import (
	"fmt"
	"os"

	"github.com/hayashi-shogi/shogicore/internal/engine"
	"github.com/hayashi-shogi/shogicore/internal/storage"
)

// AverageSnapshots reads the last snapshotCount pp_NNN.bin snapshots out of
// the weights directory and writes their element-wise average back as the
// canonical pp.bin, a Polyak-style average of the training tail meant to
// settle the high-variance AdaGrad trajectory onto a less noisy point.
func AverageSnapshots() error {
	dir, err := storage.GetWeightsDir()
	if err != nil {
		return err
	}

	paths := make([]string, 0, snapshotCount)
	for n := 100; n < 100+snapshotCount; n++ {
		path := storage.SnapshotPath(dir, n)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return fmt.Errorf("learn: no weight snapshots found in %s", dir)
	}

	avg, err := storage.AverageWeights(paths, engine.Dim())
	if err != nil {
		return err
	}
	return storage.WriteWeights(storage.WeightsPath(dir), avg)
}
