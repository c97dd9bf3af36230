package kv

// Store is a named-record settings store. Values are opaque bytes;
// callers own the encoding.
type Store interface {
	// Get returns the value for key and whether the record exists.
	Get(key string) ([]byte, bool, error)
	// Set inserts or overwrites the record for key.
	Set(key string, value []byte) error
	Close() error
}
