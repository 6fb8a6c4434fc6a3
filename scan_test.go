package memprobe

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubject() *Subject {
	return &Subject{pid: 424242, log: logrus.New()}
}

func TestScanEliminatePreservesOrder(t *testing.T) {
	s := &Scan{typ: TypeI32, hits: []uint64{100, 200, 300, 400}}

	s.Eliminate(1)
	assert.Equal(t, []uint64{100, 300, 400}, s.hits)
}

func TestScanEliminateOutOfRangeIsNoop(t *testing.T) {
	s := &Scan{typ: TypeI32, hits: []uint64{100, 200, 300}}

	s.Eliminate(-1)
	s.Eliminate(3)
	s.Eliminate(99)
	assert.Equal(t, []uint64{100, 200, 300}, s.hits)
}

func TestBeginScanInsertsAtHeadAndFreeRemoves(t *testing.T) {
	subject := newTestSubject()

	first := subject.BeginScan(TypeU32)
	second := subject.BeginScan(TypeF64)

	require.Len(t, subject.scans, 2)
	assert.Same(t, second, subject.scans[0], "most recently created scan is at the head")

	first.Free()
	require.Len(t, subject.scans, 1)
	assert.Same(t, second, subject.scans[0])

	subject.Free()
	assert.Len(t, subject.scans, 0)
}

func TestScanForkIsIndependentOfParent(t *testing.T) {
	subject := newTestSubject()
	parent := subject.BeginScan(TypeU32)
	parent.hits = []uint64{10, 20, 30}
	parent.initialized = true

	fork := parent.Fork()
	require.Len(t, subject.scans, 2)

	fork.Eliminate(0)
	assert.Equal(t, []uint64{20, 30}, fork.hits)
	assert.Equal(t, []uint64{10, 20, 30}, parent.hits, "refining a fork must not alter the parent")
}

func TestUpdateRejectsMismatchedValueType(t *testing.T) {
	subject := newTestSubject()
	scan := subject.BeginScan(TypeU32)

	err := scan.Update(OpEqual, NewF64(1.0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)
}

func TestRefreshBeforeFirstSearchErrors(t *testing.T) {
	subject := newTestSubject()
	scan := subject.BeginScan(TypeU32)

	err := scan.Refresh()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)
}
