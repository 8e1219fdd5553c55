// Command mdjournalctl is a thin CLI over mdjournald's admin service.
// Since there is no generated client stub (see adminserver's codec
// doc comment), it calls grpc.ClientConn.Invoke directly against the
// hand-named RPC methods, the same way cmd/client's counterpart calls
// through a generated stub, minus the generated layer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/chn0318/mdjournal/adminserver"
)

func main() {
	addr := flag.String("addr", "localhost:7700", "mdjournald admin gRPC address")
	maxEntries := flag.Int("max-entries", 0, "force-expire: max entries to trim (0 = trimmer's configured batch size)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mdjournalctl [-addr host:port] status|force-expire")
		os.Exit(2)
	}

	conn, err := grpc.Dial(*addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		adminserver.DialOption(),
	)
	if err != nil {
		log.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch flag.Arg(0) {
	case "status":
		resp := new(adminserver.StatusResponse)
		if err := conn.Invoke(ctx, "/mdjournal.Admin/Status", &adminserver.StatusRequest{}, resp); err != nil {
			log.Fatalf("status: %v", err)
		}
		printJSON(resp)

	case "force-expire":
		resp := new(adminserver.ForceExpireResponse)
		req := &adminserver.ForceExpireRequest{MaxEntries: *maxEntries}
		if err := conn.Invoke(ctx, "/mdjournal.Admin/ForceExpire", req, resp); err != nil {
			log.Fatalf("force-expire: %v", err)
		}
		printJSON(resp)

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		os.Exit(2)
	}
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal response: %v", err)
	}
	fmt.Println(string(b))
}
