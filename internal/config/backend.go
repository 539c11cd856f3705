package config

// ConfigBackend persists config values keyed by dotted names. Get returns the
// stored value as text so every key kind is parsed the same way; Set receives
// a value already parsed for its key.
type ConfigBackend interface {
	Get(key string) (raw string, ok bool, err error)
	Set(key string, val any) error
	Delete(key string) error
}
