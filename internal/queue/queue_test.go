package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-scripts/imagegrab/internal/types"
)

func TestAddKeepsFirstOccurrence(t *testing.T) {
	q := New()
	assert.True(t, q.Add("https://a.test/1.png"))
	assert.True(t, q.Add("https://a.test/2.png"))
	assert.False(t, q.Add("https://a.test/1.png"))
	assert.True(t, q.Add("https://a.test/3.png"))

	assert.Equal(t, []types.Locator{
		"https://a.test/1.png",
		"https://a.test/2.png",
		"https://a.test/3.png",
	}, q.Items())
}

func TestItemsReturnsCopy(t *testing.T) {
	q := New()
	q.Add("a")

	items := q.Items()
	items[0] = "mutated"

	assert.Equal(t, []types.Locator{"a"}, q.Items())
	assert.False(t, q.Add("a"))
}


func TestConcurrentAdd(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Add("same") {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
	assert.Len(t, q.Items(), 1)
}
