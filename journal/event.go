// Package journal implements the metadata-server journal event
// subsystem: the tagged union of event kinds appended to the log, and
// the three operations defined on every one of them — Replay,
// HasExpired, and Expire. It has no knowledge of the physical log's
// byte layout, of batching, or of fsync; those are the log
// collaborator's job. It talks to the rest of the metadata server
// only through the mdsapi interfaces.
package journal

import (
	"fmt"

	"github.com/chn0318/mdjournal/mdsapi"
)

// Kind tags an Event's concrete type, used by the codec and by
// diagnostics; the event core itself dispatches via the Event
// interface, never by switching on Kind.
type Kind uint8

const (
	KindString Kind = iota
	KindMetaBlobUpdate // never appears standalone; embedded via EUpdate etc.
	KindImportMap
	KindExport
	KindImportStart
	KindImportFinish
	KindAlloc
	KindAnchor
	KindAnchorClient
	KindClientMap
	KindSession
	KindUpdate
	KindSlaveUpdate
	KindOpen
	KindPurgeFinish
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "EString"
	case KindImportMap:
		return "EImportMap"
	case KindExport:
		return "EExport"
	case KindImportStart:
		return "EImportStart"
	case KindImportFinish:
		return "EImportFinish"
	case KindAlloc:
		return "EAlloc"
	case KindAnchor:
		return "EAnchor"
	case KindAnchorClient:
		return "EAnchorClient"
	case KindClientMap:
		return "EClientMap"
	case KindSession:
		return "ESession"
	case KindUpdate:
		return "EUpdate"
	case KindSlaveUpdate:
		return "ESlaveUpdate"
	case KindOpen:
		return "EOpen"
	case KindPurgeFinish:
		return "EPurgeFinish"
	default:
		return "EUnknown"
	}
}

// Position is the entry's span in the log, in bytes. It is assigned
// by the physical log at Append time and reconstructed from the read
// offset at ReadAt time; it is never part of an event's own encoded
// wire body, since the log's own bookkeeping is the only authoritative
// source for where an entry landed.
type Position struct {
	Start int64
	End   int64
}

// SetPos installs p as the position of the event embedding this
// Position by value. Promoted onto every *E* event type through
// struct embedding, so the physical log can fix up an event's
// position without a type switch over every kind.
func (p *Position) SetPos(np Position) { *p = np }

// Event is the capability set every journal entry provides. It is a
// composition-based tagged union, not a class hierarchy: MetaBlob is
// held by value inside the variants that need it, never inherited
// (spec.md §9).
type Event interface {
	Kind() Kind
	Pos() Position
	SetPos(Position)

	// HasExpired is a pure, side-effect-free predicate: true iff this
	// entry may be trimmed from the log tail right now.
	HasExpired(mds *mdsapi.MDS) bool

	// Expire schedules whatever asynchronous work is needed to make
	// HasExpired eventually return true, and invokes done exactly
	// once when that work completes. It is illegal to call Expire on
	// an event for which HasExpired currently returns true.
	Expire(mds *mdsapi.MDS, done mdsapi.Completion)

	// Replay reconstructs this entry's effect on in-memory state.
	// Replay runs synchronously to completion and never returns an
	// error: on-disk inconsistency it cannot recover from is a fatal
	// invariant violation (see FatalError).
	Replay(mds *mdsapi.MDS)
}

// FatalError is panicked for the invariant violations spec.md §7
// classifies as fatal: a missing non-root non-stray parent during
// replay, a duplicate slave-update PREPARE, a table version gap other
// than 0 or 1, an unknown op tag, or a call to Expire on a variant for
// which expiration is logically impossible. Callers that supervise
// Replay/Expire (the boot-time replay driver, the trimmer) recover it
// at their own boundary rather than letting the process crash with an
// unstructured panic.
type FatalError struct {
	Kind   Kind
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("journal: fatal: %s: %s", e.Kind, e.Reason)
}

func fatalf(k Kind, format string, args ...interface{}) {
	panic(&FatalError{Kind: k, Reason: fmt.Sprintf(format, args...)})
}

// expireIllegal panics for the variants where spec.md §4.7 makes
// Expire a hard fatal: it is a programming error for the trimmer to
// have called Expire on something HasExpired already reports (or
// always reports) as expired.
func expireIllegal(k Kind) {
	fatalf(k, "Expire called on an always-expired event kind")
}
