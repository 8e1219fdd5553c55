// Package scalog implements physicallog.Backend over a pool of Scalog
// clients, adapted from sharedlog/scalog: the same round-robin client
// pool and address construction from viper-bound flags, with the
// payload sent as base64 text, storing an opaque record instead of a typed
// DataRecord/CommitRecord pair, since a journal record has no
// separate key.
package scalog

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/chn0318/scalog/client"
	"github.com/chn0318/scalog/pkg/address"
	"github.com/spf13/viper"
)

// record is a JSON envelope for one physicallog record. Append and
// ReadAt do not use it: they pass the base64 text of the record bytes
// to the client directly, because the client's Append/Read surface is
// string-in, string-out.
type record struct {
	Payload string `json:"payload"`
}

// Backend is a physicallog.Backend backed by Scalog.
type Backend struct {
	clients []*client.Client

	mu   sync.Mutex
	next int

	// offsetToRef lets Backend present the byte-offset contract
	// physicallog.Backend promises even though Scalog natively
	// addresses records by (shard, GSN), not by byte offset. Offsets
	// here are assigned sequentially at Append time and the table
	// lives only in process memory: a new Backend starts with an
	// empty table and a tail of 0, so records appended by an earlier
	// process are not reachable through ReadAt.
	offsetToRef map[int64]scalogRef
	tail        int64
}

type scalogRef struct {
	gsn   int64
	shard int32
}

// New constructs a Backend from viper-bound configuration, exactly as
// sharedlog/scalog.NewScalogSystem does: discovery address, data
// address, and replication factor all come from flags bound into
// viper by config.BindFlags.
func New() (*Backend, error) {
	numReplica := int32(viper.GetInt("data-replication-factor"))
	discPort := uint16(viper.GetInt("disc-port"))
	discIP := viper.GetString("disc-ip")
	discAddr := address.NewGeneralDiscAddr(discIP, discPort)
	dataPort := uint16(viper.GetInt("data-port"))
	dataAddr := address.NewGeneralDataAddr("data-%v-%v-ip", numReplica, dataPort)

	numClients := viper.GetInt("scalog-client-pool-size")
	if numClients <= 0 {
		numClients = 4
	}

	clients := make([]*client.Client, 0, numClients)
	for i := 0; i < numClients; i++ {
		c, err := client.NewClient(dataAddr, discAddr, numReplica)
		if err != nil {
			return nil, fmt.Errorf("scalog: new client %d: %w", i, err)
		}
		clients = append(clients, c)
	}

	return &Backend{
		clients:     clients,
		offsetToRef: make(map[int64]scalogRef),
	}, nil
}

func (b *Backend) pickClient() *client.Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.clients[b.next]
	b.next = (b.next + 1) % len(b.clients)
	return c
}

func (b *Backend) Append(data []byte) (int64, error) {
	payload := base64.StdEncoding.EncodeToString(data)
	c := b.pickClient()
	gsn, sid, err := c.AppendOne(payload)
	if err != nil {
		return 0, fmt.Errorf("scalog: append: %w", err)
	}

	b.mu.Lock()
	offset := b.tail
	b.tail += int64(len(data))
	b.offsetToRef[offset] = scalogRef{gsn: gsn, shard: sid}
	b.mu.Unlock()
	return offset, nil
}

func (b *Backend) ReadAt(offset int64) ([]byte, error) {
	b.mu.Lock()
	ref, ok := b.offsetToRef[offset]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("scalog: no record at offset %d", offset)
	}

	c := b.pickClient()
	payload, err := c.Read(ref.gsn, ref.shard, 0)
	if err != nil {
		return nil, fmt.Errorf("scalog: read gsn=%d shard=%d: %w", ref.gsn, ref.shard, err)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("scalog: decode payload at offset %d: %w", offset, err)
	}
	return data, nil
}

func (b *Backend) Tail() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tail
}

// Trim is a no-op: Scalog's own retention policy, not this journal,
// owns reclamation of the underlying shard storage.
func (b *Backend) Trim(int64) error { return nil }
