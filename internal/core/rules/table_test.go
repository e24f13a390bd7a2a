package rules

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexapp/cortex-bridge/internal/model"
)

// stepClock returns the queued times in order, repeating the last one.
type stepClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func names(rs []model.Rule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestCreate_AssignsIncreasingIDs(t *testing.T) {
	tbl := NewTable(nil)
	a := tbl.Create(model.NewRule{Name: "a", NaturalLanguage: "block insta", RuleJSON: "{}"})
	b := tbl.Create(model.NewRule{Name: "b"})

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.True(t, a.IsActive)
	assert.Equal(t, "block insta", a.NaturalLanguage)
	assert.NotZero(t, a.CreatedAt)
}

func TestCreate_IDsNeverReusedAfterDelete(t *testing.T) {
	tbl := NewTable(nil)
	seen := map[int64]bool{}
	var last int64
	for i := 0; i < 50; i++ {
		r := tbl.Create(model.NewRule{Name: "r"})
		require.Greater(t, r.ID, last)
		require.False(t, seen[r.ID])
		seen[r.ID] = true
		last = r.ID
		if i%3 == 0 {
			require.NoError(t, tbl.Delete(r.ID))
		}
	}
}

func TestListAll_NewestFirstWithStableTieBreak(t *testing.T) {
	clk := &stepClock{times: []time.Time{
		time.UnixMilli(100),
		time.UnixMilli(100),
		time.UnixMilli(200),
	}}
	tbl := NewTable(clk.Now)
	tbl.Create(model.NewRule{Name: "A"})
	tbl.Create(model.NewRule{Name: "B"})
	tbl.Create(model.NewRule{Name: "C"})

	assert.Equal(t, []string{"C", "A", "B"}, names(tbl.ListAll()))
}

func TestListActive_FiltersInactive(t *testing.T) {
	clk := &stepClock{times: []time.Time{time.UnixMilli(1), time.UnixMilli(2), time.UnixMilli(3)}}
	tbl := NewTable(clk.Now)
	a := tbl.Create(model.NewRule{Name: "A"})
	tbl.Create(model.NewRule{Name: "B"})
	tbl.Create(model.NewRule{Name: "C"})

	require.NoError(t, tbl.Toggle(a.ID))
	assert.Equal(t, []string{"C", "B"}, names(tbl.ListActive()))
	assert.Equal(t, []string{"C", "B", "A"}, names(tbl.ListAll()))
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	tbl := NewTable(nil)
	r := tbl.Create(model.NewRule{Name: "r"})

	require.NoError(t, tbl.Toggle(r.ID))
	got, err := tbl.Get(r.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, tbl.Toggle(r.ID))
	got, err = tbl.Get(r.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestMissingID_NotFoundWithoutStateChange(t *testing.T) {
	tbl := NewTable(nil)
	tbl.Create(model.NewRule{Name: "keep"})
	before := tbl.ListAll()

	err := tbl.Toggle(99)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = tbl.Delete(99)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = tbl.Get(99)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.Equal(t, before, tbl.ListAll())
}

func TestDelete_RemovesRule(t *testing.T) {
	tbl := NewTable(nil)
	r := tbl.Create(model.NewRule{Name: "gone"})
	require.NoError(t, tbl.Delete(r.ID))
	assert.Equal(t, 0, tbl.Len())
	assert.ErrorIs(t, tbl.Delete(r.ID), model.ErrNotFound)
}

func TestReturnedRuleIsACopy(t *testing.T) {
	tbl := NewTable(nil)
	r := tbl.Create(model.NewRule{Name: "orig"})
	r.Name = "mutated"
	got, err := tbl.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "orig", got.Name)
}

func TestConcurrentCreate_UniqueIDs(t *testing.T) {
	tbl := NewTable(nil)
	const workers, per = 8, 100
	ids := make(chan int64, workers*per)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				ids <- tbl.Create(model.NewRule{Name: "c"}).ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*per)
	assert.Equal(t, workers*per, tbl.Len())
}
