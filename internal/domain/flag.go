package domain

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TruthyMarker is the stored form of a set Flag. Existing documents and
// clients compare featured/premium against this literal string.
const TruthyMarker = "true"

// Flag is a boolean that is persisted and served as the strings "true"/"false".
// Compatibility shim for documents written by the first version of the API.
type Flag bool

func (f Flag) String() string {
	if f {
		return TruthyMarker
	}
	return "false"
}

func (f Flag) MarshalJSON() ([]byte, error) { return json.Marshal(f.String()) }

// UnmarshalJSON accepts both "true"/"false" strings and real booleans.
func (f *Flag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = s == TruthyMarker
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("flag: %w", err)
	}
	*f = Flag(v)
	return nil
}

func (f Flag) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(f.String())
}

func (f *Flag) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		*f = rv.StringValue() == TruthyMarker
	case bson.TypeBoolean:
		*f = Flag(rv.Boolean())
	case bson.TypeNull, bson.TypeUndefined:
		*f = false
	default:
		return fmt.Errorf("flag: unexpected bson type %s", t)
	}
	return nil
}
