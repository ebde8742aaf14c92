package database

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KeyVal is one entry of an OrderedMap
type KeyVal struct {
	Key string
	Val interface{}
}

// OrderedMap is a JSON object that keeps its keys in insertion order.
// Records are written Model, RAM, HDD, Location, Price, which a plain map
// would sort alphabetically.
type OrderedMap []KeyVal

// MarshalJSON implements the json.Marshaler interface.
func (om OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range om {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(kv.Val)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface, keeping key order.
// Numbers decode as json.Number.
func (om *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	t, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", t)
	}

	out := OrderedMap{}
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := t.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", t)
		}
		var val interface{}
		if err := dec.Decode(&val); err != nil {
			return err
		}
		out = append(out, KeyVal{Key: key, Val: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*om = out
	return nil
}

// Get returns the value for a key
func (om OrderedMap) Get(key string) (interface{}, bool) {
	for _, kv := range om {
		if kv.Key == key {
			return kv.Val, true
		}
	}
	return nil, false
}

// String implements fmt.Stringer
func (om OrderedMap) String() string {
	b, _ := om.MarshalJSON()
	return string(b)
}
