package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionTables(t *testing.T) {
	assert.Equal(t, "snapshots_day", PartitionDay.snapshotsTable())
	assert.Equal(t, "pilots_week", PartitionWeek.pilotsTable())
	assert.Equal(t, "atcs_month", PartitionMonth.atcsTable())
}

func TestPartitionValid(t *testing.T) {
	for _, p := range Partitions {
		assert.True(t, p.Valid())
	}
	assert.False(t, Partition("year").Valid())
	assert.False(t, Partition("").Valid())
}
