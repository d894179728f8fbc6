package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUnmarshalLegacyList(t *testing.T) {
	var record Record
	err := json.Unmarshal([]byte(`["2024-01-10", "2024-01-10", "2024-01-11T09:00:00"]`), &record)
	require.NoError(t, err)

	assert.Equal(t, 2, record.Present["2024-01-10"])
	assert.Equal(t, 1, record.Present["2024-01-11"])
	assert.Empty(t, record.Absent)
}

func TestRecordUnmarshalCountedEntry(t *testing.T) {
	var record Record
	err := json.Unmarshal([]byte(`{"present":{"2024-01-10":3},"absent":{"2024-01-11":1}}`), &record)
	require.NoError(t, err)

	assert.Equal(t, 3, record.Present["2024-01-10"])
	assert.Equal(t, 1, record.Absent["2024-01-11"])
}

func TestRecordUnmarshalEntryWithMissingMaps(t *testing.T) {
	var record Record
	err := json.Unmarshal([]byte(`{"present":{"2024-01-10":1}}`), &record)
	require.NoError(t, err)

	require.NotNil(t, record.Absent)
	record.Absent["2024-01-12"] = 1
	assert.Equal(t, 1, record.Absent["2024-01-12"])
}

func TestRecordMarshalAlwaysCounted(t *testing.T) {
	var record Record
	require.NoError(t, json.Unmarshal([]byte(`["2024-01-10"]`), &record))

	out, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"present":{"2024-01-10":1},"absent":{}}`, string(out))
}

func TestRecordLegacyRoundTrip(t *testing.T) {
	var first Record
	require.NoError(t, json.Unmarshal([]byte(`["2024-01-10","2024-01-10","2024-01-12"]`), &first))

	out, err := json.Marshal(first)
	require.NoError(t, err)

	var second Record
	require.NoError(t, json.Unmarshal(out, &second))
	assert.Equal(t, first.Present, second.Present)
	assert.Equal(t, []string{"2024-01-10", "2024-01-10", "2024-01-12"}, ExpandCounts(second.Present))
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2024-01-10", DayKey("2024-01-10T15:04:05Z"))
	assert.Equal(t, "2024-01-10", DayKey("2024-01-10"))
	assert.Equal(t, "short", DayKey("short"))
}

func TestExpandCountsSortedAndRepeated(t *testing.T) {
	dates := ExpandCounts(map[string]int{
		"2024-02-01": 2,
		"2024-01-15": 1,
		"2024-03-01": 0,
	})
	assert.Equal(t, []string{"2024-01-15", "2024-02-01", "2024-02-01"}, dates)
}

func TestEntryPrunedDropsZeroCounts(t *testing.T) {
	entry := Entry{
		Present: map[string]int{"2024-01-10": 2, "2024-01-11": 0},
		Absent:  map[string]int{"2024-01-12": -1, "2024-01-13": 1},
	}
	pruned := entry.Pruned()
	assert.Equal(t, map[string]int{"2024-01-10": 2}, pruned.Present)
	assert.Equal(t, map[string]int{"2024-01-13": 1}, pruned.Absent)
}

func TestLedgerSubjects(t *testing.T) {
	ledger := NewLedger()
	ledger.EnsureSubject("Mathematics")
	ledger.EnsureSubject("Mathematics")
	assert.Equal(t, []string{"Mathematics"}, ledger.Subjects)
	require.Contains(t, ledger.Records, "Mathematics")

	assert.True(t, ledger.RemoveSubject("Mathematics"))
	assert.False(t, ledger.RemoveSubject("Mathematics"))
	assert.NotContains(t, ledger.Records, "Mathematics")
}
