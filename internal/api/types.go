package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// --- Chat ---

// ChatRequest is the body of POST /api/chat. ForceAgent is serialized as
// null when the backend should route the question itself.
type ChatRequest struct {
	Message    string  `json:"message"`
	ForceAgent *string `json:"force_agent"`
}

// ChatResponse is the backend reply as received. Every field is optional and
// several shapes coexist: flat fields, a nested data object, a nested meta
// object, or everything embedded in the answer text.
type ChatResponse struct {
	Answer  Text       `json:"answer"`
	SQL     Text       `json:"sql"`
	Columns Columns    `json:"columns"`
	Rows    Rows       `json:"rows"`
	Data    *TableData `json:"data,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type TableData struct {
	Columns Columns `json:"columns"`
	Rows    Rows    `json:"rows"`
}

type Meta struct {
	SQL     Text    `json:"sql"`
	Query   Text    `json:"query"`
	Notes   Text    `json:"notes"`
	Agent   Text    `json:"agent"`
	Mode    Text    `json:"mode"`
	Columns Columns `json:"columns"`
	Rows    Rows    `json:"rows"`
}

// UnmarshalJSON leaves d empty when data is not an object.
func (d *TableData) UnmarshalJSON(b []byte) error {
	type plain TableData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*d = TableData{}
		return nil
	}
	*d = TableData(p)
	return nil
}

// UnmarshalJSON leaves m empty when meta is not an object.
func (m *Meta) UnmarshalJSON(b []byte) error {
	type plain Meta
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*m = Meta{}
		return nil
	}
	*m = Meta(p)
	return nil
}

// Text accepts any JSON scalar and keeps its textual form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	v, err := decodeValue(b)
	if err != nil {
		return err
	}
	*t = Text(FormatValue(v))
	return nil
}

// Columns accepts an array of arbitrary values and converts each to text.
// Anything other than an array decodes as no columns.
type Columns []string

func (c *Columns) UnmarshalJSON(b []byte) error {
	v, err := decodeValue(b)
	if err != nil {
		return err
	}
	items, ok := v.([]any)
	if !ok {
		*c = nil
		return nil
	}
	out := make(Columns, len(items))
	for i, item := range items {
		out[i] = FormatValue(item)
	}
	*c = out
	return nil
}

// Rows accepts an array of rows. A row that is not itself an array becomes
// a single-cell row. Numbers decode as json.Number so they print exactly.
type Rows [][]any

func (r *Rows) UnmarshalJSON(b []byte) error {
	v, err := decodeValue(b)
	if err != nil {
		return err
	}
	items, ok := v.([]any)
	if !ok {
		*r = nil
		return nil
	}
	out := make(Rows, len(items))
	for i, item := range items {
		if cells, ok := item.([]any); ok {
			out[i] = cells
		} else {
			out[i] = []any{item}
		}
	}
	*r = out
	return nil
}

func decodeValue(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// FormatValue converts a decoded JSON value to the text shown to the user.
// nil becomes the empty string; arrays and objects are shown as compact JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case Text:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case []any, map[string]any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}
