package memprobe

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRegionEqualFindsBoundaryStraddlingMatch(t *testing.T) {
	needle := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	data := make([]byte, scanBufferSize*2)
	// Place the needle so its 4 bytes straddle the first 64KiB buffer
	// refill boundary — the case the overlap handling exists for.
	straddle := scanBufferSize - 2
	copy(data[straddle:], needle)

	// A second, fully interior occurrence to confirm ordinary matches
	// still work alongside the boundary case.
	interior := 100
	copy(data[interior:], needle)

	base := uint64(0x1000)
	mem := &fakeMemory{base: base, data: data}
	region := Region{Start: base, End: base + uint64(len(data)), Read: true, Write: true}

	scan := &Scan{typ: TypeU32}
	needleValue := NewU32(binary.LittleEndian.Uint32(needle))

	err := scanRegion(scan, mem, region, needleValue, OpEqual)
	require.NoError(t, err)

	want := []uint64{base + uint64(interior), base + uint64(straddle)}
	assert.Equal(t, want, scan.hits)
}

func TestScanRegionOrderedStridesByWidth(t *testing.T) {
	// Four consecutive uint32 values: 10, 200, 30, 5.
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:], 10)
	binary.LittleEndian.PutUint32(data[4:], 200)
	binary.LittleEndian.PutUint32(data[8:], 30)
	binary.LittleEndian.PutUint32(data[12:], 5)

	base := uint64(0x2000)
	mem := &fakeMemory{base: base, data: data}
	region := Region{Start: base, End: base + uint64(len(data)), Read: true, Write: true}

	scan := &Scan{typ: TypeU32}
	err := scanRegion(scan, mem, region, NewU32(20), OpGreaterEq)
	require.NoError(t, err)

	// The 200 at offset 4 and the 30 at offset 8 are >= 20.
	assert.Equal(t, []uint64{base + 4, base + 8}, scan.hits)
}

func TestScanRegionEqualNoMatchesLeavesHitsEmpty(t *testing.T) {
	data := make([]byte, 256)
	base := uint64(0x3000)
	mem := &fakeMemory{base: base, data: data}
	region := Region{Start: base, End: base + uint64(len(data)), Read: true, Write: true}

	scan := &Scan{typ: TypeU32}
	err := scanRegion(scan, mem, region, NewU32(0xFFFFFFFF), OpEqual)
	require.NoError(t, err)
	assert.Empty(t, scan.hits)
}

func TestAppendHitGrowsCapacityByDoubling(t *testing.T) {
	scan := &Scan{}
	scan.hits = make([]uint64, 2, 2)
	scan.hits[0], scan.hits[1] = 1, 2

	appendHit(scan, 3)
	assert.Equal(t, []uint64{1, 2, 3}, scan.hits)
	assert.Equal(t, 4, cap(scan.hits))
}
