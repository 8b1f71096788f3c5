package ledger

import (
	"fmt"
	"testing"

	"tripwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(apiName string) models.APICall {
	return models.APICall{
		APIName:      apiName,
		Endpoint:     "/v1/test",
		RequestData:  map[string]any{"q": 1},
		ResponseData: map[string]any{"data": []any{}},
	}
}

func TestRecordKeepsMostRecentTen(t *testing.T) {
	l := New(10)
	for i := 0; i < 15; i++ {
		l.Record(call(fmt.Sprintf("searchFlights-%d", i)))
	}

	records := l.Query(false, "")
	require.Len(t, records, 10)
	assert.Equal(t, "searchFlights-5", records[0].APIName)
	assert.Equal(t, "searchFlights-14", records[9].APIName)
}

func TestRecordDropsInvalidCalls(t *testing.T) {
	l := New(10)
	l.Record(models.APICall{APIName: "searchFlights"})
	l.Record(models.APICall{APIName: "", Endpoint: "/x", RequestData: 1, ResponseData: 1})
	assert.Empty(t, l.Query(false, ""))
}

func TestRecordStampsUserQuery(t *testing.T) {
	l := New(10)
	l.SetUserQuery("  flights to paris  ")
	l.Record(call("searchFlights"))

	records := l.Query(false, "")
	require.Len(t, records, 1)
	assert.Equal(t, "flights to paris", records[0].UserQuery)
	assert.False(t, records[0].RecordedAt.IsZero())

	// Blank updates are ignored.
	l.SetUserQuery("   ")
	assert.Equal(t, "flights to paris", l.LatestUserQuery())
}

func TestQueryFiltersByIntent(t *testing.T) {
	l := New(10)
	l.Record(call("searchFlights"))
	l.Record(call("searchHotelsByCity"))
	l.Record(call("searchActivities"))
	l.Record(call("searchTransfers"))

	tests := []struct {
		query string
		want  []string
	}{
		{"show me flights", []string{"searchFlights"}},
		{"any good accommodation", []string{"searchHotelsByCity"}},
		{"things to do nearby", []string{"searchActivities"}},
		{"transport from the airport", []string{"searchTransfers"}},
		{"weather forecast", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			records := l.Query(true, tt.query)
			var names []string
			for _, r := range records {
				names = append(names, r.APIName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestQueryAlwaysIncludesErrors(t *testing.T) {
	l := New(10)
	l.Record(call("searchFlights"))
	l.Record(models.APICall{
		APIName:      "searchHotelsByCity",
		Endpoint:     "Amadeus API: searchHotelsByCity",
		RequestData:  map[string]any{},
		ResponseData: map[string]any{"error": true, "message": "boom"},
	})

	records := l.Query(true, "show me flights")
	require.Len(t, records, 2)
	assert.Equal(t, "searchFlights", records[0].APIName)
	assert.True(t, records[1].IsError())
}

func TestQueryFallsBackToLatestUserQuery(t *testing.T) {
	l := New(10)
	l.SetUserQuery("hotels in rome")
	l.Record(call("searchFlights"))
	l.Record(call("searchHotelsByCity"))

	records := l.Query(true, "")
	require.Len(t, records, 1)
	assert.Equal(t, "searchHotelsByCity", records[0].APIName)
}
