package sync

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)
	other := newRing(64, 200)

	for i := 0; i < 256; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		shard := r.shard(key)

		assert.True(t, shard >= 0 && shard < 64)
		for j := 0; j < 16; j++ {
			assert.Equal(t, shard, r.shard(key))
		}
		assert.Equal(t, shard, other.shard(key))
	}
}

func TestRing_Distribution(t *testing.T) {
	shards := 5
	iterations := 500000
	marginOfError := 0.1
	expectedFrequency := iterations / shards

	r := newRing(uint(shards), 200)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		hits[r.shard([]byte(fmt.Sprintf("key%d", i)))]++
	}

	assert.Len(t, hits, shards)
	for _, hitCount := range hits {
		assert.True(t, math.Abs(float64(hitCount-expectedFrequency)) <= marginOfError*float64(expectedFrequency))
	}
}

func TestRing_SingleShard(t *testing.T) {
	r := newRing(1, 10)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, r.shard([]byte(fmt.Sprintf("key%d", i))))
	}
}
