package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencer_Advance(t *testing.T) {
	seq := NewSequencer(10)
	assert.Equal(t, uint64(10), seq.Current())
	assert.Equal(t, uint64(11), seq.Advance())
	assert.Equal(t, uint64(12), seq.Advance())
}

func TestSequencer_ObserveIsMonotonic(t *testing.T) {
	seq := NewSequencer(0)
	seq.Observe(100)
	assert.Equal(t, uint64(100), seq.Current())

	// Stale heights never move the counter backwards.
	seq.Observe(50)
	assert.Equal(t, uint64(100), seq.Current())
}

func TestSequencer_ConcurrentAdvance(t *testing.T) {
	seq := NewSequencer(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq.Advance()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), seq.Current())
}
