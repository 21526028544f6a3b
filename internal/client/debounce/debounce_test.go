package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDebouncer_SingleSubmit(t *testing.T) {
	var rec recorder
	d := New(20*time.Millisecond, rec.record)

	d.Submit("rick")

	require.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"rick"}, rec.get())
	assert.False(t, d.Pending())
}

func TestDebouncer_BurstDeliversLastValueOnce(t *testing.T) {
	var rec recorder
	d := New(50*time.Millisecond, rec.record)

	for _, v := range []string{"r", "ri", "ric", "rick"} {
		d.Submit(v)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(rec.get()) > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"rick"}, rec.get())
}

func TestDebouncer_FlushRunsImmediately(t *testing.T) {
	var rec recorder
	d := New(time.Hour, rec.record)

	d.Submit("morty")
	assert.True(t, d.Pending())

	assert.True(t, d.Flush())
	assert.Equal(t, []string{"morty"}, rec.get())
	assert.False(t, d.Flush(), "nothing left to flush")
	assert.Equal(t, []string{"morty"}, rec.get())
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	var called atomic.Int32
	d := New(20*time.Millisecond, func(string) { called.Add(1) })

	d.Submit("summer")
	d.Stop()
	d.Submit("beth")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), called.Load())
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
}

func TestNew_DefaultWindow(t *testing.T) {
	d := New(0, func(int) {})
	assert.Equal(t, DefaultWindow, d.window)
}
