package models

import "time"

// APICall describes one travel-API invocation, success or failure.
type APICall struct {
	APIName      string `json:"apiName"`
	Endpoint     string `json:"endpoint"`
	RequestData  any    `json:"requestData"`
	ResponseData any    `json:"responseData"`
}

// APICallRecord is an APICall as stored in the ledger, stamped with the
// time it was recorded and the user query it answered. Records are never
// mutated after creation.
type APICallRecord struct {
	APICall
	RecordedAt time.Time `json:"recordedAt"`
	UserQuery  string    `json:"userQuery"`
}

// IsError reports whether the recorded response carries a structured
// error payload.
func (r APICallRecord) IsError() bool {
	m, ok := r.ResponseData.(map[string]any)
	if !ok {
		return false
	}
	flag, ok := m["error"]
	if !ok {
		return false
	}
	b, ok := flag.(bool)
	return ok && b
}
