package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/isoweek"
)

// DailyRecord is one day of a week.
type DailyRecord struct {
	Date       string              `json:"date"`      // YYYY-MM-DD format
	DayOfWeek  string              `json:"dayOfWeek"` // 月..日
	Responses  map[string]Response `json:"responses"`
	Reflection string              `json:"reflection"`

	// keyOrder holds response keys in the order they appeared in the source
	// JSON object. Nil for records built in memory.
	keyOrder []string
}

// ResponseKeys returns the keys of Responses. Keys decoded from JSON come
// back in document order; anything else follows in sorted order.
func (d DailyRecord) ResponseKeys() []string {
	keys := make([]string, 0, len(d.Responses))
	seen := make(map[string]bool, len(d.Responses))
	for _, k := range d.keyOrder {
		if _, ok := d.Responses[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range d.Responses {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Clone returns a deep copy of d.
func (d DailyRecord) Clone() DailyRecord {
	out := d
	out.Responses = make(map[string]Response, len(d.Responses))
	for k, v := range d.Responses {
		out.Responses[k] = v
	}
	out.keyOrder = append([]string(nil), d.keyOrder...)
	return out
}

func (d *DailyRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date       string          `json:"date"`
		DayOfWeek  string          `json:"dayOfWeek"`
		Responses  json.RawMessage `json:"responses"`
		Reflection string          `json:"reflection"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	responses, order, err := decodeOrderedResponses(raw.Responses)
	if err != nil {
		return fmt.Errorf("decoding responses for %s: %w", raw.Date, err)
	}

	*d = DailyRecord{
		Date:       raw.Date,
		DayOfWeek:  raw.DayOfWeek,
		Responses:  responses,
		Reflection: raw.Reflection,
		keyOrder:   order,
	}
	return nil
}

func decodeOrderedResponses(data json.RawMessage) (map[string]Response, []string, error) {
	responses := make(map[string]Response)
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return responses, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}

	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key token %v", tok)
		}
		var r Response
		if err := dec.Decode(&r); err != nil {
			return nil, nil, err
		}
		if _, dup := responses[key]; !dup {
			order = append(order, key)
		}
		responses[key] = r
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return responses, order, nil
}

// WeekRecord is everything stored for one ISO week.
type WeekRecord struct {
	Week           isoweek.WeekID
	Goal           string
	ParentsComment string
	Items          []string
	Days           [constants.DaysPerWeek]DailyRecord

	// DecodedDays is the number of dailyRecords present in the decoded file.
	// Zero for records built in memory.
	DecodedDays int
}

// Clone returns a deep copy of w.
func (w *WeekRecord) Clone() *WeekRecord {
	out := *w
	out.Items = append([]string(nil), w.Items...)
	for i := range w.Days {
		out.Days[i] = w.Days[i].Clone()
	}
	return &out
}

// weekFile is the on-disk layout shared with the repository.
type weekFile struct {
	Week            string        `json:"week"`
	Goal            string        `json:"goal"`
	EvaluationItems []string      `json:"evaluationItems"`
	ParentsComment  string        `json:"parentsComment"`
	DailyRecords    []DailyRecord `json:"dailyRecords"`
}

type dayFile struct {
	Date       string           `json:"date"`
	DayOfWeek  string           `json:"dayOfWeek"`
	Responses  orderedResponses `json:"responses"`
	Reflection string           `json:"reflection"`
}

type responsePair struct {
	key   string
	value Response
}

// orderedResponses marshals as a JSON object that preserves item order.
type orderedResponses []responsePair

func (o orderedResponses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(string(p.value))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func orderResponses(items []string, d DailyRecord) orderedResponses {
	out := make(orderedResponses, 0, len(d.Responses))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if v, ok := d.Responses[item]; ok && !seen[item] {
			out = append(out, responsePair{key: item, value: v})
			seen[item] = true
		}
	}
	for _, k := range d.ResponseKeys() {
		if !seen[k] {
			out = append(out, responsePair{key: k, value: d.Responses[k]})
		}
	}
	return out
}

func (w WeekRecord) MarshalJSON() ([]byte, error) {
	days := make([]dayFile, len(w.Days))
	for i, d := range w.Days {
		days[i] = dayFile{
			Date:       d.Date,
			DayOfWeek:  d.DayOfWeek,
			Responses:  orderResponses(w.Items, d),
			Reflection: d.Reflection,
		}
	}

	items := w.Items
	if items == nil {
		items = []string{}
	}

	return json.Marshal(struct {
		Week            string    `json:"week"`
		Goal            string    `json:"goal"`
		EvaluationItems []string  `json:"evaluationItems"`
		ParentsComment  string    `json:"parentsComment"`
		DailyRecords    []dayFile `json:"dailyRecords"`
	}{
		Week:            w.Week.String(),
		Goal:            w.Goal,
		EvaluationItems: items,
		ParentsComment:  w.ParentsComment,
		DailyRecords:    days,
	})
}

// UnmarshalJSON decodes a week file. Days beyond the seventh are dropped;
// missing days are left zero for the caller to regenerate. A missing or
// malformed week field leaves Week zero.
func (w *WeekRecord) UnmarshalJSON(data []byte) error {
	var f weekFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	rec := WeekRecord{
		Goal:           f.Goal,
		ParentsComment: f.ParentsComment,
		Items:          f.EvaluationItems,
		DecodedDays:    len(f.DailyRecords),
	}
	if id, err := isoweek.Parse(f.Week); err == nil {
		rec.Week = id
	}
	for i := 0; i < len(rec.Days) && i < len(f.DailyRecords); i++ {
		rec.Days[i] = f.DailyRecords[i]
	}
	*w = rec
	return nil
}

// EncodeWeek renders w in the two-space indented layout used for week files.
func EncodeWeek(w *WeekRecord) ([]byte, error) {
	compact, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecodeWeek parses a week file.
func DecodeWeek(data []byte) (*WeekRecord, error) {
	var w WeekRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding week file: %w", err)
	}
	return &w, nil
}
