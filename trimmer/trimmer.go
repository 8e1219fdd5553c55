// Package trimmer drives the log-trimming loop spec.md §2 describes:
// walk the journal from its trimmed tail forward, and for each entry
// either trim it (HasExpired is true) or kick off the work that will
// eventually make it true (Expire) and stop, since entries must be
// trimmed in order.
package trimmer

import (
	"context"
	"log"

	"github.com/chn0318/mdjournal/journal"
	"github.com/chn0318/mdjournal/mdsapi"
)

// Source is the subset of physicallog.Journal the trimmer needs: read
// one entry at a time and trim everything up to some offset.
type Source interface {
	ReadAt(offset int64) (journal.Event, int, error)
	Tail() int64
	Trim(offset int64) error
}

// Trimmer walks Source from Pos forward, advancing Pos past every
// entry it manages to trim.
type Trimmer struct {
	MDS   *mdsapi.MDS
	Log   Source
	Pos   int64
	Batch int // max entries considered per Step call; <=0 means unlimited
}

// New returns a Trimmer starting at the head of the log (offset 0),
// with the given per-step batch size.
func New(mds *mdsapi.MDS, log Source, batch int) *Trimmer {
	return &Trimmer{MDS: mds, Log: log, Batch: batch}
}

// Step advances the trim tail as far as it currently can, stopping at
// the first entry that is not yet expired (after kicking off Expire
// for it), the batch limit, or the log's tail. It returns the number
// of entries trimmed this call.
//
// Step recovers a *journal.FatalError panicked by HasExpired/Expire so
// one corrupt or inconsistent entry halts trimming instead of
// crashing the process; the FatalError is returned as err, and a
// caller that wants the crash-on-fatal behavior spec.md §7 otherwise
// implies has to act on it itself (Run, which cmd/mdjournald uses,
// only logs it).
func (t *Trimmer) Step() (trimmed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*journal.FatalError); ok {
				err = fe
				return
			}
			panic(r)
		}
	}()

	for i := 0; t.Batch <= 0 || i < t.Batch; i++ {
		if t.Pos >= t.Log.Tail() {
			return trimmed, nil
		}
		ev, n, rerr := t.Log.ReadAt(t.Pos)
		if rerr != nil {
			return trimmed, rerr
		}
		if !ev.HasExpired(t.MDS) {
			end := t.Pos + int64(n)
			ev.Expire(t.MDS, func() {
				log.Printf("trimmer: %s at offset %d became expirable", ev.Kind(), end)
			})
			return trimmed, nil
		}
		if terr := t.Log.Trim(t.Pos + int64(n)); terr != nil {
			return trimmed, terr
		}
		t.Pos += int64(n)
		trimmed++
	}
	return trimmed, nil
}

// Run calls Step once per tick until ctx is cancelled, logging a
// failed step rather than stopping the loop. A failed step leaves Pos
// on the entry that failed, so the next tick retries that same entry;
// nothing skips past it.
func (t *Trimmer) Run(ctx context.Context, tick <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			if _, err := t.Step(); err != nil {
				log.Printf("trimmer: step failed at offset %d: %v", t.Pos, err)
			}
		}
	}
}
