package ledger

import (
	"strings"
	"sync"
	"time"

	"tripwise/models"
	"tripwise/utils"

	"go.uber.org/zap"
)

// Ledger is the bounded log of travel-API invocations backing the
// "show your work" view. It keeps the most recent entries up to its
// capacity, each stamped with the user query that triggered it. Safe
// for concurrent use.
type Ledger struct {
	mu          sync.Mutex
	capacity    int
	calls       []models.APICallRecord
	latestQuery string
}

// New builds a ledger that retains at most capacity records.
func New(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = 10
	}
	return &Ledger{capacity: capacity}
}

// SetUserQuery updates the query context stamped onto subsequent
// records. Blank input is ignored.
func (l *Ledger) SetUserQuery(query string) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return
	}
	l.mu.Lock()
	l.latestQuery = trimmed
	l.mu.Unlock()
}

// LatestUserQuery returns the most recent query context.
func (l *Ledger) LatestUserQuery() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latestQuery
}

// Record appends a call to the ledger, evicting the oldest entries past
// capacity. Calls missing any of the required fields are logged and
// dropped rather than stored.
func (l *Ledger) Record(call models.APICall) {
	if call.APIName == "" || call.Endpoint == "" || call.RequestData == nil || call.ResponseData == nil {
		utils.GetLogger().Error("Dropping invalid API call record",
			zap.String("apiName", call.APIName),
			zap.String("endpoint", call.Endpoint))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, models.APICallRecord{
		APICall:    call,
		RecordedAt: time.Now(),
		UserQuery:  l.latestQuery,
	})
	if len(l.calls) > l.capacity {
		l.calls = l.calls[len(l.calls)-l.capacity:]
	}
}

// intentKeywords maps query phrasings to the API-name fragment they
// signal interest in.
var intentKeywords = []struct {
	queryTerms  []string
	apiFragment string
}{
	{[]string{"flight"}, "flight"},
	{[]string{"hotel", "accommodation"}, "hotel"},
	{[]string{"activity", "activities", "things to do"}, "activit"},
	{[]string{"transfer", "transport"}, "transfer"},
}

// Query returns the recorded calls, optionally filtered by relevance to
// the given query string (falling back to the latest user query).
// Error entries always pass the filter so failures stay visible.
func (l *Ledger) Query(filter bool, query string) []models.APICallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := append([]models.APICallRecord(nil), l.calls...)
	if !filter {
		return snapshot
	}
	if query == "" {
		query = l.latestQuery
	}
	if query == "" {
		return snapshot
	}

	lowered := strings.ToLower(query)
	filtered := make([]models.APICallRecord, 0, len(snapshot))
	for _, record := range snapshot {
		if record.IsError() || matchesIntent(lowered, strings.ToLower(record.APIName)) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func matchesIntent(query, apiName string) bool {
	for _, intent := range intentKeywords {
		if !strings.Contains(apiName, intent.apiFragment) {
			continue
		}
		for _, term := range intent.queryTerms {
			if strings.Contains(query, term) {
				return true
			}
		}
	}
	return false
}
