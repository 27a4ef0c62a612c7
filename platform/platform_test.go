package platform_test

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/linkedread/platform"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestClock(t *testing.T) {
	n0 := platform.TimeInNanos()
	m0 := platform.TimeInMillis()
	time.Sleep(5 * time.Millisecond)
	expect.GE(t, platform.TimeInNanos()-n0, int64(5*time.Millisecond))
	expect.GE(t, platform.TimeInMillis()-m0, int64(4))
}

func TestSingleWaiter(t *testing.T) {
	w := platform.NewSingleWaiter()
	expect.False(t, w.Signaled())

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = w.Wait(context.Background())
		}(i)
	}
	w.Signal()
	w.Signal()
	wg.Wait()
	for _, err := range errs {
		expect.NoError(t, err)
	}
	expect.True(t, w.Signaled())

	w = platform.NewSingleWaiter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	expect.EQ(t, w.Wait(ctx), context.Canceled)
}

func TestCounters(t *testing.T) {
	var c32 platform.Counter32
	var c64 platform.Counter64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c32.Increment()
				c64.Add(2)
			}
		}()
	}
	wg.Wait()
	expect.EQ(t, c32.Load(), int32(8000))
	expect.EQ(t, c64.Load(), int64(16000))
	expect.EQ(t, c32.Decrement(), int32(7999))
	expect.EQ(t, c64.Increment(), int64(16001))

	expect.EQ(t, c32.CompareExchange(5, 1), int32(7999))
	expect.EQ(t, c32.Load(), int32(7999))
	expect.EQ(t, c32.CompareExchange(5, 7999), int32(7999))
	expect.EQ(t, c32.Load(), int32(5))
	expect.EQ(t, c64.CompareExchange(0, 16001), int64(16001))
	expect.EQ(t, c64.Load(), int64(0))
}

func TestStartBoundThread(t *testing.T) {
	expect.True(t, platform.NumProcessors() > 0)
	w := platform.NewSingleWaiter()
	platform.StartBoundThread(platform.NumProcessors()+1, w.Signal)
	assert.NoError(t, w.Wait(context.Background()))
}

func TestFiles(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()
	path := filepath.Join(tmpdir, "large.txt")

	w, err := platform.OpenLargeFile(ctx, path, 'w')
	assert.NoError(t, err)
	_, err = w.Write([]byte("ACGTACGTNN"))
	assert.NoError(t, err)
	_, err = w.Read(make([]byte, 1))
	expect.NotNil(t, err)
	assert.NoError(t, w.Close())

	size, err := platform.QueryFileSize(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, size, int64(10))

	r, err := platform.OpenLargeFile(ctx, path, 'r')
	assert.NoError(t, err)
	_, err = r.Seek(4, 0)
	assert.NoError(t, err)
	data, err := ioutil.ReadAll(r)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "ACGTNN")
	assert.NoError(t, r.Close())

	_, err = platform.OpenLargeFile(ctx, path, 'x')
	expect.NotNil(t, err)

	m, err := platform.OpenMappedFile(path)
	assert.NoError(t, err)
	expect.EQ(t, string(m.Bytes()), "ACGTACGTNN")
	assert.NoError(t, m.Close())

	empty := filepath.Join(tmpdir, "empty")
	assert.NoError(t, ioutil.WriteFile(empty, nil, 0644))
	m, err = platform.OpenMappedFile(empty)
	assert.NoError(t, err)
	expect.EQ(t, len(m.Bytes()), 0)
	assert.NoError(t, m.Close())
}
