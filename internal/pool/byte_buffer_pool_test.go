package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ByteBuffer Tests
// =============================================================================

func TestByteBuffer(t *testing.T) {
	bb := NewByteBuffer(64)
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 64, cap(bb.B))

	bb.B = append(bb.B, "SEQNUM"...)
	assert.Equal(t, 6, bb.Len())

	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 64, cap(bb.B), "reset keeps capacity")
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(32, 128)

	bb := p.Get()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())

	bb.B = append(bb.B, "data"...)
	p.Put(bb)

	again := p.Get()
	assert.Equal(t, 0, again.Len(), "pooled buffers are reset")
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(32, 64)
	bb := NewByteBuffer(1024)
	p.Put(bb)
	p.Put(nil)

	got := p.Get()
	assert.LessOrEqual(t, cap(got.B), 64)
}

func TestRecordBufferPool_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				bb := GetRecordBuffer()
				bb.B = append(bb.B, 0, 0, 0, 16)
				PutRecordBuffer(bb)
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// Slice pool Tests
// =============================================================================

func TestGetFloat32Slice(t *testing.T) {
	s, cleanup := GetFloat32Slice(10)
	require.Len(t, s, 10)
	s[9] = 1.5
	cleanup()

	s, cleanup = GetFloat32Slice(3)
	defer cleanup()
	require.Len(t, s, 3)
}

func TestGetFloat64Slice(t *testing.T) {
	s, cleanup := GetFloat64Slice(5)
	defer cleanup()
	require.Len(t, s, 5)
}
