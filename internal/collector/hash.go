package collector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"hostmedic/models"
)

// hashItems fills in SHA256 and Modified for every item whose binary is
// present on disk. Work is spread over a bounded pool; a context cancel stops
// feeding the pool and leaves the remaining items unhashed.
func (c *Collector) hashItems(ctx context.Context, items []models.PersistItem) {
	if c.HashWorkers <= 0 {
		return
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.HashWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				hashOne(&items[i])
			}
		}()
	}

feed:
	for i := range items {
		if items[i].ExePath == "" || !c.FileExists(items[i].ExePath) {
			continue
		}
		select {
		case idx <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(idx)
	wg.Wait()
}

func hashOne(it *models.PersistItem) {
	f, err := os.Open(it.ExePath)
	if err != nil {
		return
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		mod := fi.ModTime().UTC()
		it.Modified = &mod
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return
	}
	it.SHA256 = hex.EncodeToString(h.Sum(nil))
}
