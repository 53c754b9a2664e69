package models

import (
	"encoding/json"
	"strings"

	"github.com/julianstephens/weekdiary/internal/logger"
)

// Response is the answer recorded for one evaluation item on one day.
type Response string

const (
	ResponseNone    Response = ""
	ResponseSuccess Response = "⭕️"
	ResponseFailure Response = "✖️"
	ResponsePartial Response = "△"
)

// responseAliases maps symbols seen in older files and typed on the command
// line to their canonical form.
var responseAliases = map[string]Response{
	"":        ResponseNone,
	"-":       ResponseNone,
	"none":    ResponseNone,
	"clear":   ResponseNone,
	"⭕️":      ResponseSuccess,
	"⭕":       ResponseSuccess,
	"○":       ResponseSuccess,
	"o":       ResponseSuccess,
	"ok":      ResponseSuccess,
	"success": ResponseSuccess,
	"✖️":      ResponseFailure,
	"✖":       ResponseFailure,
	"×":       ResponseFailure,
	"x":       ResponseFailure,
	"fail":    ResponseFailure,
	"failure": ResponseFailure,
	"△":       ResponsePartial,
	"▲":       ResponsePartial,
	"^":       ResponsePartial,
	"t":       ResponsePartial,
	"partial": ResponsePartial,
}

// ParseResponse normalizes s to a Response. ok is false for unknown input.
func ParseResponse(s string) (Response, bool) {
	r, ok := responseAliases[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

// Known reports whether r is one of the four recognized answers. Symbols
// written by other tools decode as themselves and are not known.
func (r Response) Known() bool {
	switch r {
	case ResponseNone, ResponseSuccess, ResponseFailure, ResponsePartial:
		return true
	}
	return false
}

// Next cycles none → success → failure → partial → none. An unknown
// symbol clears to none.
func (r Response) Next() Response {
	switch r {
	case ResponseNone:
		return ResponseSuccess
	case ResponseSuccess:
		return ResponseFailure
	case ResponseFailure:
		return ResponsePartial
	default:
		return ResponseNone
	}
}

// IsSet reports whether r holds an answer.
func (r Response) IsSet() bool {
	return r != ResponseNone
}

// Label is the cell text used in tables and exports, "-" when unset.
func (r Response) Label() string {
	if r == ResponseNone {
		return "-"
	}
	return string(r)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ResponseNone
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("Ignoring non-string response value", "value", string(data))
		*r = ResponseNone
		return nil
	}

	parsed, ok := ParseResponse(s)
	if !ok {
		// kept verbatim so the next save writes it back unchanged
		logger.Warn("Unknown response symbol, keeping as is", "symbol", s)
		*r = Response(s)
		return nil
	}
	*r = parsed
	return nil
}
