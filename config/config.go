// Package config binds the process's command-line flags into viper,
// the same way sharedlog/scalog.NewScalogSystem reads
// viper.GetInt("data-replication-factor") and friends: flags are
// defined once with pflag, bound into viper, and every package that
// needs a setting reads it back out of viper rather than threading a
// config struct through every constructor.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys are the viper keys this package's flags bind to.
// physicallog/scalog reads its keys directly out of viper by name
// rather than importing this package, matching how the
// teacher's scalog.go reads viper keys pflag never even names in the
// same file.
const (
	KeySelfNode       = "self-node"
	KeyStrayCount     = "stray-count"
	KeyTrimBatch      = "trim-batch"
	KeyLogBackend     = "log-backend"
	KeyDiscIP         = "disc-ip"
	KeyDiscPort       = "disc-port"
	KeyDataPort       = "data-port"
	KeyReplication    = "data-replication-factor"
	KeyScalogPoolSize = "scalog-client-pool-size"
	KeyAdminAddr      = "admin-addr"
)

// BindFlags defines every flag this service reads and binds it into
// viper under the same name. Call once, before parsing os.Args.
func BindFlags(fs *pflag.FlagSet) {
	fs.Int(KeySelfNode, 0, "this MDS's node id")
	fs.Int(KeyStrayCount, 10, "number of stray directories to reserve, one per possible node id")
	fs.Int(KeyTrimBatch, 64, "max journal entries considered per trimmer step")
	fs.String(KeyLogBackend, "memory", "physical log backend: memory or scalog")
	fs.String(KeyDiscIP, "127.0.0.1", "scalog discovery service ip")
	fs.Int(KeyDiscPort, 9000, "scalog discovery service port")
	fs.Int(KeyDataPort, 9001, "scalog data service port")
	fs.Int(KeyReplication, 3, "scalog data replication factor")
	fs.Int(KeyScalogPoolSize, 4, "number of scalog client connections to pool")
	fs.String(KeyAdminAddr, ":7700", "admin/introspection gRPC listen address")

	viper.BindPFlags(fs)
}

// Config is a plain snapshot of the settings the journal core and its
// drivers (trimmer, replay, cmd/*) need at startup. Everything else
// (physicallog/scalog's addresses) is read directly out of viper at
// the point of use, the way the teacher's scalog.go does, rather than
// being threaded through this struct.
type Config struct {
	SelfNode   int32
	StrayCount int
	TrimBatch  int
	LogBackend string
	AdminAddr  string
}

// Load reads Config's fields out of viper. Call after BindFlags and
// pflag.Parse.
func Load() (Config, error) {
	c := Config{
		SelfNode:   int32(viper.GetInt(KeySelfNode)),
		StrayCount: viper.GetInt(KeyStrayCount),
		TrimBatch:  viper.GetInt(KeyTrimBatch),
		LogBackend: viper.GetString(KeyLogBackend),
		AdminAddr:  viper.GetString(KeyAdminAddr),
	}
	switch c.LogBackend {
	case "memory", "scalog":
	default:
		return Config{}, fmt.Errorf("config: unknown log-backend %q (want memory or scalog)", c.LogBackend)
	}
	if c.StrayCount <= 0 {
		return Config{}, fmt.Errorf("config: stray-count must be positive, got %d", c.StrayCount)
	}
	return c, nil
}
