package storage

import "strings"

// Merge combines option sets left to right; later sets win on key conflicts.
// Inputs are never mutated and nil sets are skipped.
func Merge(sets ...Options) Options {
	out := Options{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

const (
	sseKey         = "sse"
	presignPostKey = "server_side_encryption"
)

// translateEncryption renames encryption option keys to the convention the
// target operation expects: put/copy calls and PUT-style presigns use "sse*"
// keys, POST-style presigns use "server_side_encryption*" keys. Keys already
// in the target convention pass through unchanged.
func translateEncryption(opts Options, post bool) Options {
	out := make(Options, len(opts))
	for k, v := range opts {
		switch {
		case post && (k == sseKey || strings.HasPrefix(k, sseKey+"_")):
			out[presignPostKey+strings.TrimPrefix(k, sseKey)] = v
		case !post && (k == presignPostKey || strings.HasPrefix(k, presignPostKey+"_")):
			out[sseKey+strings.TrimPrefix(k, presignPostKey)] = v
		default:
			out[k] = v
		}
	}
	return out
}

// str returns the option as a string, or "" when absent or of another type.
func (o Options) str(key string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return ""
}

// int64Val returns the option as an int64, accepting the common integer types.
func (o Options) int64Val(key string) (int64, bool) {
	switch v := o[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

// intVal returns the option as an int.
func (o Options) intVal(key string) (int, bool) {
	n, ok := o.int64Val(key)
	return int(n), ok
}

// strMap returns the option as a string map, or nil.
func (o Options) strMap(key string) map[string]string {
	if v, ok := o[key].(map[string]string); ok {
		return v
	}
	return nil
}
