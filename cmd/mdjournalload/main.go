// Command mdjournalload benchmarks physicallog.Journal.Append
// throughput with a worker pool of goroutines appending synthetic
// EUpdate entries, adapted from cmd/perf's MultiPut benchmark shape.
// There is no data-plane RPC in this design (journal entries are
// produced in-process by the MDS, not submitted over the network), so
// this drives the journal package directly rather than dialing a
// server.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/mdsapi"
	"github.com/chn0318/mdjournal/physicallog"
	"github.com/chn0318/mdjournal/physicallog/memorylog"
	"github.com/chn0318/mdjournal/physicallog/scalog"
)

func main() {
	backendName := flag.String("backend", "memory", "physical log backend: memory or scalog")
	totalOps := flag.Int("total-ops", 100000, "total number of Append calls")
	concurrency := flag.Int("concurrency", 32, "number of concurrent appending workers")
	dentriesPerBlob := flag.Int("dentries-per-blob", 4, "number of dentry updates per EUpdate's MetaBlob")

	flag.Parse()

	log.Printf("mdjournalload start: backend=%s, total-ops=%d, concurrency=%d, dentries-per-blob=%d",
		*backendName, *totalOps, *concurrency, *dentriesPerBlob)

	backend, err := newBackend(*backendName)
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	jrnl := physicallog.New(backend)

	jobs := make(chan int, *totalOps)
	var wg sync.WaitGroup

	var (
		mu        sync.Mutex
		errCount  int
		startTime = time.Now()
	)

	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(workerID) + 1))
			for j := range jobs {
				ev := syntheticUpdate(workerID, j, *dentriesPerBlob, r)
				if _, err := jrnl.Append(ev); err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
				}
			}
		}(w)
	}

	for i := 0; i < *totalOps; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(startTime).Seconds()
	successOps := *totalOps - errCount
	opsPerSec := float64(successOps) / elapsed

	log.Printf("=== mdjournalload result ===")
	log.Printf("Total ops:      %d", *totalOps)
	log.Printf("Successful ops: %d", successOps)
	log.Printf("Failed ops:     %d", errCount)
	log.Printf("Elapsed time:   %.3f s", elapsed)
	log.Printf("Throughput:     %.2f appends/s", opsPerSec)
	log.Printf("Final tail:     %d bytes", jrnl.Tail())
}

func newBackend(name string) (physicallog.Backend, error) {
	switch name {
	case "scalog":
		return scalog.New()
	default:
		return memorylog.New(), nil
	}
}

func syntheticUpdate(workerID, jobID, dentries int, r *rand.Rand) *journal.EUpdate {
	dir := mdsapi.DirfragID{Ino: mdsapi.InodeNo(1000 + workerID), Frag: 0}
	lump := journal.Dirlump{Dirv: mdsapi.Version(jobID + 1), Dirty: true}
	for i := 0; i < dentries; i++ {
		lump.Full = append(lump.Full, journal.FullBit{
			DentryName:    fmt.Sprintf("f-%d-%d-%d", workerID, jobID, i),
			DentryVersion: mdsapi.Version(jobID + 1),
			Dirty:         true,
			Inode: mdsapi.InodeRecord{
				Ino: mdsapi.InodeNo(r.Int63()),
			},
		})
	}
	return &journal.EUpdate{
		Blob: journal.MetaBlob{
			Lumps: []journal.DirfragLump{{ID: dir, Lump: lump}},
		},
	}
}
