package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring consistently hashes keys onto a fixed number of shards, each shard
// occupying replicas points on the ring.
type ring struct {
	points *treemap.Map

	// Keys hashing past the last point wrap around to the first one.
	first int
}

func newRing(shards, replicas uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)
	for shard := 0; shard < int(shards); shard++ {
		seed := hash([]byte(fmt.Sprintf("shard%d", shard)))

		for replica := 0; replica < int(replicas); replica++ {
			var buf [12]byte
			binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
			binary.LittleEndian.PutUint32(buf[8:], uint32(replica))
			points.Put(hash(buf[:]), shard)
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

func (r *ring) shard(key []byte) int {
	if _, shard := r.points.Ceiling(hash(key)); shard != nil {
		return shard.(int)
	}
	return r.first
}

func hash(data []byte) int64 {
	h, _ := murmur3.Sum128(data)
	return int64(h)
}
