package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Search represents one job-requisition matching run and its criteria.
type Search struct {
	ID                 string       `json:"id"`
	Name               string       `json:"search_name"`
	JobRole            string       `json:"job_role"`
	Skills             []string     `json:"skills"`
	CandidateCorpus    string       `json:"candidate_corpus,omitempty"`
	JDText             string       `json:"jd_text,omitempty"`
	CandidateCount     int          `json:"candidate_count"`
	Shared             SharedFields `json:"shared_fields"`
	Processed          bool         `json:"processed"`
	ShortlistedIndices IndexList    `json:"shortlisted_indices"`
	Submitted          int          `json:"submitted"`
	CustomQuestion     string       `json:"custom_question,omitempty"`
	Archived           bool         `json:"archived"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// SharedFields is the criteria group entered once per search and locked after
// the first candidate submission.
type SharedFields struct {
	Company      string `json:"company"`
	Location     string `json:"location"`
	HRContact    string `json:"hr_contact"`
	NoticePeriod string `json:"notice_period"`
	Remote       string `json:"remote"`   // "Yes", "No" or blank
	Contract     string `json:"contract"` // "Yes", "No" or blank
}

// IsZero reports whether no shared field has been supplied yet.
func (s SharedFields) IsZero() bool {
	return s == SharedFields{}
}

// NormalizeTriState maps the assorted truthy/falsy encodings that older
// searches and imported tasks carry ("true", "1", "yes", bool JSON) onto the
// canonical Yes/No/blank form values.
func NormalizeTriState(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "y":
		return "Yes"
	case "no", "false", "0", "n":
		return "No"
	default:
		return ""
	}
}

// IndexList is the ordered list of shortlisted candidate ordinals for a
// search. The wire value is defensively decoded: some producers emit a native
// JSON array, others a JSON-encoded string containing that array. The
// normalization happens here at the boundary so nothing deeper in the core
// ever sees the string form.
type IndexList []int

// UnmarshalJSON accepts both `[1,2,3]` and `"[1,2,3]"`.
func (l *IndexList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*l = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("decode index list wrapper: %w", err)
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			*l = nil
			return nil
		}
		data = []byte(encoded)
	}

	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return fmt.Errorf("decode index list: %w", err)
	}
	*l = indices
	return nil
}
