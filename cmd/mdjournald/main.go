// Command mdjournald runs the journal event core as a single-node,
// non-distributed metadata server process: it replays whatever the
// physical log already holds, then serves an admin/introspection gRPC
// endpoint while a trimmer loop runs in the background. Adapted from
// cmd/server/main.go's "build the collaborators, listen, serve"
// shape.
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/chn0318/mdjournal/adminserver"
	"github.com/chn0318/mdjournal/anchortable"
	"github.com/chn0318/mdjournal/config"
	"github.com/chn0318/mdjournal/idtable"
	"github.com/chn0318/mdjournal/journaltest"
	"github.com/chn0318/mdjournal/mdsapi"
	"github.com/chn0318/mdjournal/physicallog"
	"github.com/chn0318/mdjournal/physicallog/memorylog"
	"github.com/chn0318/mdjournal/physicallog/scalog"
	"github.com/chn0318/mdjournal/replay"
	"github.com/chn0318/mdjournal/trimmer"
)

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	config.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("mdjournald: flag parse: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("mdjournald: %v", err)
	}

	backend, err := newBackend(cfg.LogBackend)
	if err != nil {
		log.Fatalf("mdjournald: log backend: %v", err)
	}
	jrnl := physicallog.New(backend)

	// The cache, client map, migrator, and journal-open server are
	// external collaborators spec.md gives only by contract; this
	// process's single-node deployment mode uses journaltest's fakes
	// for them (see journaltest's package doc comment). The allocator
	// and anchor table/client get their real implementations, since
	// those are this module's own responsibility.
	fake := journaltest.New(mdsapi.NodeID(cfg.SelfNode), mdsapi.InodeNo(1))
	jrnl.BindClientMap(fake.ClientMap)

	firstFreeIno := mdsapi.StrayBase + mdsapi.InodeNo(cfg.StrayCount)
	mds := &mdsapi.MDS{
		SelfNode:     mdsapi.NodeID(cfg.SelfNode),
		Cache:        fake.Cache,
		AnchorClient: anchortable.NewClient(),
		AnchorTable:  anchortable.New(),
		AllocTable:   idtable.New(firstFreeIno),
		ClientMap:    fake.ClientMap,
		Migrator:     fake.Migrator,
		Log:          jrnl,
		Server:       fake.Server,
	}

	n, err := replay.Run(mds, jrnl)
	if err != nil {
		log.Fatalf("mdjournald: replay failed: %v", err)
	}
	log.Printf("mdjournald: replayed %d entries, tail=%d", n, jrnl.Tail())

	tr := trimmer.New(mds, jrnl, cfg.TrimBatch)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tick := make(chan struct{})
	go driveTicker(ctx, tick)
	go tr.Run(ctx, tick)

	admin := adminserver.New(jrnl, tr)
	grpcServer := adminserver.NewGRPCServer()
	adminserver.Register(grpcServer, admin)

	lis, err := net.Listen("tcp", cfg.AdminAddr)
	if err != nil {
		log.Fatalf("mdjournald: listen on %s: %v", cfg.AdminAddr, err)
	}

	go func() {
		log.Printf("mdjournald: admin gRPC listening on %s (node=%d, backend=%s)", cfg.AdminAddr, cfg.SelfNode, cfg.LogBackend)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("mdjournald: serve: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("mdjournald: shutting down")
	cancel()
	grpcServer.GracefulStop()
}

func newBackend(name string) (physicallog.Backend, error) {
	switch name {
	case "scalog":
		return scalog.New()
	default:
		return memorylog.New(), nil
	}
}

// driveTicker feeds the trimmer's tick channel at a fixed interval
// until ctx is cancelled, the same fixed-cadence background loop
// shape cmd/server's counterparts leave to an external caller.
func driveTicker(ctx context.Context, tick chan<- struct{}) {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			select {
			case tick <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}
}
