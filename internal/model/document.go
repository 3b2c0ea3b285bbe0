package model

// Document is a schemaless record as stored in a collection. Values are
// JSON-shaped (string, float64/int64, bool, nil, []any, map[string]any).
// The engine-assigned identifier is exposed under IDField.
type Document map[string]any

// IDField is the key under which documents carry their identifier.
const IDField = "_id"

// ID returns the document identifier, or "" if it has none.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Filter is an equality filter over top-level document fields.
// An empty filter matches every document.
type Filter map[string]any
