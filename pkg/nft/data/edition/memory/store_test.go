package memory

import (
	"testing"

	"github.com/code-payments/code-nft/pkg/nft/data/edition/tests"
)

func TestEditionMemoryStore(t *testing.T) {
	s := New().(*store)
	tests.RunTests(t, s, s.reset)
}
