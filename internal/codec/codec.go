// Package codec defines the on-disk representation of writes and removes,
// and the encoder/decoder pair that turns them into a self-delimited
// stream of JSON records. Records are self-delimited rather than
// length-prefixed: a json.Decoder can tell where one value ends and the
// next begins on its own, and exposes the byte offset of that boundary
// through InputOffset, which is exactly what the index needs to point at
// a record's end.
package codec

// Command is the tagged union written to a segment for every mutation.
// Set carries both Key and Value; Remove carries only Key. The Type field
// disambiguates them on decode — encoding/json has no native sum type, so
// the tag is stored as a field inside the same object as the payload.
type Command struct {
	Type  CommandType `json:"type"`
	Key   string      `json:"key"`
	Value string      `json:"value,omitempty"`
}

// CommandType identifies which mutation a Command represents.
type CommandType string

const (
	// Set records that Key was assigned Value.
	Set CommandType = "set"
	// Remove records that Key was deleted.
	Remove CommandType = "remove"
)

// NewSet builds a Set command.
func NewSet(key, value string) Command {
	return Command{Type: Set, Key: key, Value: value}
}

// NewRemove builds a Remove command.
func NewRemove(key string) Command {
	return Command{Type: Remove, Key: key}
}
