// Package replay implements the boot-time journal replay driver:
// walk the log from head to tail once and call Event.Replay on each
// entry in order, exactly as spec.md §2's second paragraph describes.
package replay

import (
	"fmt"
	"log"

	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/mdsapi"
)

// Source is the subset of physicallog.Journal replay needs: read
// entries in order starting from offset 0 up to Tail.
type Source interface {
	ReadAt(offset int64) (journal.Event, int, error)
	Tail() int64
}

// Run reads every entry in log from offset 0 to its current tail and
// calls Replay on each in order, returning how many entries it
// applied. It stops at the first entry whose Replay panics with a
// *journal.FatalError and returns the count applied before it plus an
// error naming that entry's offset — on-disk inconsistency Replay cannot recover
// from is exactly what spec.md §7 defines FatalError for, and the
// caller (cmd/mdjournald) treats it as a boot failure, not something
// to shrug off and continue past.
func Run(mds *mdsapi.MDS, src Source) (n int, err error) {
	offset := int64(0)
	tail := src.Tail()
	for offset < tail {
		ev, size, rerr := src.ReadAt(offset)
		if rerr != nil {
			return n, fmt.Errorf("replay: read at offset %d: %w", offset, rerr)
		}
		if rerr := replayOne(mds, ev); rerr != nil {
			return n, fmt.Errorf("replay: entry at offset %d: %w", offset, rerr)
		}
		log.Printf("replay: applied %s [%d, %d)", ev.Kind(), offset, offset+int64(size))
		offset += int64(size)
		n++
	}
	return n, nil
}

func replayOne(mds *mdsapi.MDS, ev journal.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*journal.FatalError); ok {
				err = fe
				return
			}
			panic(r)
		}
	}()
	ev.Replay(mds)
	return nil
}
