package protocol

import "time"

// Item is a value payload together with its protocol metadata.
type Item struct {
	// Data is the raw value. Storage is binary safe: values travel
	// length-delimited on the wire, so Data may contain CRLF bytes.
	Data []byte

	// Flags are server-opaque and round-tripped verbatim.
	Flags uint32

	// Expiration is relative to now. Zero means the item never expires.
	Expiration time.Duration

	// CAS is the server-issued compare-and-swap token. It is populated
	// only by gets responses and consumed by the cas command.
	CAS uint64

	// HasCAS reports whether CAS was issued by the server.
	HasCAS bool
}

// Timeless returns an item without expiration.
func Timeless(data []byte) Item {
	return Item{Data: data}
}

// WithExpiration returns an item that expires after d.
// A zero duration is equivalent to Timeless.
func WithExpiration(data []byte, d time.Duration) Item {
	return Item{Data: data, Expiration: d}
}

// ExptimeSeconds returns the expiration as the wire value: whole seconds,
// zero meaning never.
func (i Item) ExptimeSeconds() int64 {
	return int64(i.Expiration / time.Second)
}

// String renders the data as text. This is a convenience for textual values;
// the protocol itself never requires Data to be valid UTF-8.
func (i Item) String() string {
	return string(i.Data)
}
