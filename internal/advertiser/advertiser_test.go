package advertiser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripd/internal/packet"
	"ripd/internal/rib"
)

type recordingSender struct {
	sent map[int][]byte
}

func newRecordingSender() *recordingSender { return &recordingSender{sent: map[int][]byte{}} }

func (s *recordingSender) SendTo(buf []byte, port int) error {
	s.sent[port] = buf
	return nil
}

func threeRouterTable() (*rib.Table, []rib.Neighbor) {
	// R2 in a linear R1-R2-R3 topology, mid-convergence:
	//  dest 1 via R1, so it is poisoned toward R1 and advertised with its
	//  real metric toward R3.
	//  dest 3 via R3, so it must be poisoned toward R3.
	tbl := rib.New(2)
	tbl.Upsert(1, rib.Entry{Metric: 1, NextHop: 1})
	tbl.Upsert(3, rib.Entry{Metric: 1, NextHop: 3})
	neighbors := []rib.Neighbor{
		{ID: 1, OutboundPort: 5001, LinkMetric: 1},
		{ID: 3, OutboundPort: 5003, LinkMetric: 1},
	}
	return tbl, neighbors
}

func TestScheduledAppliesPoisonedReversePerNeighbor(t *testing.T) {
	tbl, neighbors := threeRouterTable()
	sender := newRecordingSender()

	err := Scheduled(sender, tbl, neighbors)
	require.NoError(t, err)

	toR3, err := packet.Decode(sender.sent[5003])
	require.NoError(t, err)
	assert.Equal(t, rib.Infinity, toR3.Entries[3], "dest 3 poisoned toward its own next hop")
	assert.Equal(t, 1, toR3.Entries[1], "dest 1 advertised with its real metric toward R3")

	toR1, err := packet.Decode(sender.sent[5001])
	require.NoError(t, err)
	assert.Equal(t, rib.Infinity, toR1.Entries[1], "dest 1 poisoned toward its own next hop")
}

func TestScheduledIncludesGarbageEntries(t *testing.T) {
	tbl, neighbors := threeRouterTable()
	tbl.MoveToGarbage(3)
	sender := newRecordingSender()

	require.NoError(t, Scheduled(sender, tbl, neighbors))

	toR1, err := packet.Decode(sender.sent[5001])
	require.NoError(t, err)
	assert.Equal(t, rib.Infinity, toR1.Entries[3])
}

func TestTriggeredOnlySendsChangedEntries(t *testing.T) {
	tbl, neighbors := threeRouterTable()
	tbl.MarkChanged(3)
	sender := newRecordingSender()

	require.NoError(t, Triggered(sender, tbl, neighbors))

	toR1, err := packet.Decode(sender.sent[5001])
	require.NoError(t, err)
	assert.Equal(t, map[uint16]int{3: 1}, toR1.Entries)
}

func TestTriggeredClearsChangeFlagsAfterBuilding(t *testing.T) {
	tbl, neighbors := threeRouterTable()
	tbl.MarkChanged(3)
	sender := newRecordingSender()

	require.NoError(t, Triggered(sender, tbl, neighbors))

	e, _ := tbl.Get(3)
	assert.False(t, e.Changed)
}

func TestTriggeredElidesEmptyPayload(t *testing.T) {
	tbl, neighbors := threeRouterTable()
	sender := newRecordingSender()

	require.NoError(t, Triggered(sender, tbl, neighbors))

	assert.Empty(t, sender.sent)
}
