package db

// Partition identifies one of the three independently retained copies of the
// snapshot stream. Every snapshot is written to all of them; the day partition
// is pruned on a rolling horizon while week and month are fully reset at
// their window boundary.
type Partition string

const (
	PartitionDay   Partition = "day"
	PartitionWeek  Partition = "week"
	PartitionMonth Partition = "month"
)

// Partitions lists all partitions in write order.
var Partitions = []Partition{PartitionDay, PartitionWeek, PartitionMonth}

func (p Partition) Valid() bool {
	switch p {
	case PartitionDay, PartitionWeek, PartitionMonth:
		return true
	}
	return false
}

func (p Partition) snapshotsTable() string { return "snapshots_" + string(p) }
func (p Partition) pilotsTable() string    { return "pilots_" + string(p) }
func (p Partition) atcsTable() string      { return "atcs_" + string(p) }
