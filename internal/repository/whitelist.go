package repository

import "go.mongodb.org/mongo-driver/bson"

// Whitelist enumerates the fields a create/update operation is permitted
// to write, mapping the client-facing JSON name to the stored field name.
// Whitelists are static configuration supplied per resource; anything not
// listed is silently stripped from the input.
type Whitelist map[string]string

// FilterStored strips input to the whitelist and rewrites keys to stored
// field names, ready for a partial $set merge.
func (w Whitelist) FilterStored(input map[string]interface{}) bson.M {
	out := bson.M{}
	for jsonKey, storedKey := range w {
		if v, ok := input[jsonKey]; ok {
			out[storedKey] = v
		}
	}
	return out
}

// FilterJSON strips input to the whitelist keeping the JSON field names,
// ready for decoding into a typed model.
func (w Whitelist) FilterJSON(input map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(w))
	for jsonKey := range w {
		if v, ok := input[jsonKey]; ok {
			out[jsonKey] = v
		}
	}
	return out
}

// Allows reports whether the given JSON field may be written.
func (w Whitelist) Allows(jsonKey string) bool {
	_, ok := w[jsonKey]
	return ok
}
