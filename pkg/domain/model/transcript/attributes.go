package transcript

import (
	"bytes"
	"encoding/json"
	"iter"
	"strconv"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/m-mizutani/goerr/v2"
)

// Attributes is a flat key/value mapping that keeps the order in which keys were first
// set. Re-setting an existing key replaces the value in place.
type Attributes struct {
	m *orderedmap.OrderedMap[string, any]
}

func NewAttributes() *Attributes {
	return &Attributes{m: orderedmap.NewOrderedMap[string, any]()}
}

func (x *Attributes) Set(key string, value any) {
	if x.m == nil {
		x.m = orderedmap.NewOrderedMap[string, any]()
	}
	x.m.Set(key, value)
}

func (x *Attributes) Get(key string) (any, bool) {
	if x == nil || x.m == nil {
		return nil, false
	}
	return x.m.Get(key)
}

func (x *Attributes) Len() int {
	if x == nil || x.m == nil {
		return 0
	}
	return x.m.Len()
}

// All iterates over key/value pairs in insertion order.
func (x *Attributes) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if x == nil || x.m == nil {
			return
		}
		for k, v := range x.m.AllFromFront() {
			if !yield(k, v) {
				return
			}
		}
	}
}

func (x *Attributes) Keys() []string {
	keys := make([]string, 0, x.Len())
	for k := range x.All() {
		keys = append(keys, k)
	}
	return keys
}

func (x *Attributes) Copy() *Attributes {
	if x == nil {
		return nil
	}
	copied := NewAttributes()
	for k, v := range x.All() {
		copied.Set(k, v)
	}
	return copied
}

func (x *Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range x.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal attribute key", goerr.V("key", k))
		}
		value, err := json.Marshal(v)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal attribute value", goerr.V("key", k))
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
		i++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts only a JSON object. Numbers are kept as json.Number so that
// they render exactly as the provider wrote them. Nested objects and arrays are kept as
// decoded and shown as compact JSON by DisplayString.
func (x *Attributes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return goerr.Wrap(err, "failed to read attributes")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return goerr.New("attributes must be a JSON object", goerr.V("token", tok))
	}

	attrs := NewAttributes()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return goerr.Wrap(err, "failed to read attribute key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return goerr.New("attribute key is not a string", goerr.V("token", keyTok))
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return goerr.Wrap(err, "failed to read attribute value", goerr.V("key", key))
		}
		attrs.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return goerr.Wrap(err, "failed to read end of attributes")
	}

	*x = *attrs
	return nil
}

// DisplayString renders an attribute value for documents and spreadsheets.
func DisplayString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case bool:
		return strconv.FormatBool(value)
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
