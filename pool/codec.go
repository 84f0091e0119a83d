package pool

import (
	"encoding/gob"
	"encoding/json"
	"io"
)

// Encoder writes one value per call to an underlying stream.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads one value per call from an underlying stream.
type Decoder interface {
	Decode(v any) error
}

// Codec frames unit inputs and results for transfer between the host and a
// worker process. Both sides of the pipe must use the same codec; the host
// tells the worker which one through the spawn environment.
type Codec interface {
	// Name identifies the codec on the wire ("gob", "json").
	Name() string
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
}

// Gob is the default codec. It round-trips most Go types faithfully,
// including nested structs and maps, and is the more robust choice for
// large values.
var Gob Codec = gobCodec{}

// JSON restricts inputs and results to JSON-encodable values. Use it when
// the unit's types are defined in terms of JSON anyway or when the wire
// format needs to be inspectable.
var JSON Codec = jsonCodec{}

type gobCodec struct{}

func (gobCodec) Name() string                   { return "gob" }
func (gobCodec) NewEncoder(w io.Writer) Encoder { return gob.NewEncoder(w) }
func (gobCodec) NewDecoder(r io.Reader) Decoder { return gob.NewDecoder(r) }

type jsonCodec struct{}

func (jsonCodec) Name() string                   { return "json" }
func (jsonCodec) NewEncoder(w io.Writer) Encoder { return json.NewEncoder(w) }
func (jsonCodec) NewDecoder(r io.Reader) Decoder { return json.NewDecoder(r) }

func codecByName(name string) Codec {
	if name == JSON.Name() {
		return JSON
	}
	return Gob
}
