package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Documents in this service are stored verbatim: the typed fields cover what
// the server reads, everything else the client sent rides along in Extra
// (bson ",inline") and is merged back into the JSON object on the way out.

var knownKeys sync.Map // reflect.Type -> map[string]struct{}

func jsonKeys(t reflect.Type) map[string]struct{} {
	if v, ok := knownKeys.Load(t); ok {
		return v.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		keys[name] = struct{}{}
	}
	knownKeys.Store(t, keys)
	return keys
}

// marshalWithExtra encodes v and adds the extra keys. An extra key that v
// also defines holds the stored value that did not fit the typed field, so it
// wins.
func marshalWithExtra(v any, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return json.Marshal(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, x := range extra {
		out[k] = x
	}
	return json.Marshal(out)
}

// extraFields returns the keys of data that are not json fields of t.
func extraFields(data []byte, t reflect.Type) (map[string]any, error) {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for k := range jsonKeys(t) {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// unmarshalLenient decodes a stored document into out, which must be a
// method-free document type with an inline Extra map. Generic updates store
// whatever the caller sent, so a known field may hold a value of another
// type; such elements are returned as misfits instead of failing the read.
func unmarshalLenient[T any](data []byte, out *T) (map[string]any, error) {
	if err := bson.Unmarshal(data, out); err == nil {
		return nil, nil
	}
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return nil, err
	}
	var (
		fit    bson.D
		misfit map[string]any
	)
	for _, e := range elems {
		one, err := bson.Marshal(bson.D{{Key: e.Key(), Value: e.Value()}})
		if err != nil {
			return nil, err
		}
		var trial T
		if bson.Unmarshal(one, &trial) == nil {
			fit = append(fit, bson.E{Key: e.Key(), Value: e.Value()})
			continue
		}
		var m bson.M
		if err := bson.Unmarshal(one, &m); err != nil {
			return nil, err
		}
		if misfit == nil {
			misfit = map[string]any{}
		}
		misfit[e.Key()] = m[e.Key()]
	}

	b, err := bson.Marshal(fit)
	if err != nil {
		return nil, err
	}
	var clean T
	if err := bson.Unmarshal(b, &clean); err != nil {
		return nil, err
	}
	*out = clean
	return misfit, nil
}

func withMisfits(extra, misfit map[string]any) map[string]any {
	if len(misfit) == 0 {
		return extra
	}
	if extra == nil {
		extra = make(map[string]any, len(misfit))
	}
	for k, v := range misfit {
		extra[k] = v
	}
	return extra
}
