package protocol

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// ResponseType enumerates the closed set of command outcomes.
type ResponseType string

const (
	RespStored     ResponseType = "STORED"
	RespNotStored  ResponseType = "NOT_STORED"
	RespExists     ResponseType = "EXISTS"
	RespDeleted    ResponseType = "DELETED"
	RespNotFound   ResponseType = "NOT_FOUND"
	RespValue      ResponseType = "VALUE"  // single-key get hit
	RespValues     ResponseType = "VALUES" // gets and multi-key get
	RespCounter    ResponseType = "COUNTER"
	RespVersion    ResponseType = "VERSION"
	RespStats      ResponseType = "STATS"
	RespNoResponse ResponseType = "NO_RESPONSE" // quit and noreply commands
)

// Entry associates a fetched item with its key.
type Entry struct {
	Key  Key
	Item Item
}

// Response is the outcome of exactly one command. Application outcomes like
// NOT_STORED or NOT_FOUND are response types, not errors: they are expected
// protocol results.
type Response struct {
	Type ResponseType

	// Entries holds fetch results in server emission order.
	Entries []Entry

	// Counter is the value after incr/decr.
	Counter uint64

	// Version is the server version string.
	Version string

	// Stats holds decoded STAT lines.
	Stats []Stat

	// Error is set for server-reported ERROR, CLIENT_ERROR and SERVER_ERROR
	// lines, preserving the server's message. Other fields are zero then.
	Error error
}

// HasError reports whether the server answered with an error line.
func (r *Response) HasError() bool {
	return r.Error != nil
}

// IsStored reports a successful store.
func (r *Response) IsStored() bool {
	return r.Type == RespStored
}

// IsMiss reports that the requested key(s) were absent.
func (r *Response) IsMiss() bool {
	return r.Type == RespNotFound || (r.Type == RespValues && len(r.Entries) == 0)
}

// Item returns the first fetched item, if any.
func (r *Response) Item() (Item, bool) {
	if len(r.Entries) == 0 {
		return Item{}, false
	}
	return r.Entries[0].Item, true
}

// Pre-allocated byte slices for comparisons (avoid allocation in hot path)
var (
	crlfBytes         = []byte(CRLF)
	errorGenericBytes = []byte(ErrorGeneric)
	clientErrorPrefix = []byte(ErrorClientPrefix + " ")
	serverErrorPrefix = []byte(ErrorServerPrefix + " ")
	storedBytes       = []byte(TokenStored)
	notStoredBytes    = []byte(TokenNotStored)
	existsBytes       = []byte(TokenExists)
	deletedBytes      = []byte(TokenDeleted)
	notFoundBytes     = []byte(TokenNotFound)
	endBytes          = []byte(TokenEnd)
	valuePrefix       = []byte(TokenValue + " ")
	statPrefix        = []byte(TokenStat + " ")
	versionPrefix     = []byte(TokenVersion + " ")
)

// ReadResponse reads one complete logical response for cmd from r.
//
// The response shape is dictated by cmd's family: a single status line for
// stores, deletes and arithmetic; VALUE blocks terminated by END for
// fetches; one VERSION line; STAT lines terminated by END. Any family may
// instead receive an ERROR, CLIENT_ERROR or SERVER_ERROR line, which is
// returned in Response.Error with the server message preserved.
//
// Single-key get collapses to RespValue (or RespNotFound when END arrives
// with nothing collected); gets and multi-key get always yield RespValues.
//
// Go errors indicate I/O or framing failures: the reader's position in the
// byte stream is no longer known and the connection must be closed.
func ReadResponse(r *bufio.Reader, cmd *Command) (*Response, error) {
	switch cmd.Family() {
	case FamilyNone:
		return &Response{Type: RespNoResponse}, nil
	case FamilyFetch:
		return readFetchResponse(r, cmd)
	case FamilyVersion:
		return readVersionResponse(r)
	case FamilyStats:
		return readStatsResponse(r)
	default:
		return readAckResponse(r)
	}
}

// readLine returns the next line without its CRLF terminator.
// The returned slice points into the reader's buffer and is only valid
// until the next read.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		// Line exceeds buffer, fall back to ReadBytes (allocates)
		line, err = r.ReadBytes('\n')
	}
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(line, crlfBytes), nil
}

// serverErrorLine maps the three error line forms to their error types,
// or nil if line is not an error line.
func serverErrorLine(line []byte) error {
	if bytes.HasPrefix(line, clientErrorPrefix) {
		return &ClientError{Message: string(line[len(clientErrorPrefix):])}
	}
	if bytes.HasPrefix(line, serverErrorPrefix) {
		return &ServerError{Message: string(line[len(serverErrorPrefix):])}
	}
	if bytes.Equal(line, errorGenericBytes) {
		return &GenericError{Message: ErrorGeneric}
	}
	return nil
}

func readAckResponse(r *bufio.Reader) (*Response, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	if serr := serverErrorLine(line); serr != nil {
		return &Response{Error: serr}, nil
	}

	switch {
	case bytes.Equal(line, storedBytes):
		return &Response{Type: RespStored}, nil
	case bytes.Equal(line, notStoredBytes):
		return &Response{Type: RespNotStored}, nil
	case bytes.Equal(line, existsBytes):
		return &Response{Type: RespExists}, nil
	case bytes.Equal(line, deletedBytes):
		return &Response{Type: RespDeleted}, nil
	case bytes.Equal(line, notFoundBytes):
		return &Response{Type: RespNotFound}, nil
	}

	// A bare integer is the counter value after incr/decr.
	if counter, err := strconv.ParseUint(string(line), 10, 64); err == nil {
		return &Response{Type: RespCounter, Counter: counter}, nil
	}

	slog.Error("memento: unexpected status line", "line", string(line))
	return nil, &ParseError{Message: "unexpected status line: " + string(line)}
}

func readFetchResponse(r *bufio.Reader, cmd *Command) (*Response, error) {
	var entries []Entry

	for {
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}

		if serr := serverErrorLine(line); serr != nil {
			return &Response{Error: serr}, nil
		}

		if bytes.Equal(line, endBytes) {
			break
		}

		entry, err := readValueBlock(r, line, cmd.WantsCAS())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if cmd.Name == CmdGet && len(cmd.Keys) == 1 {
		if len(entries) == 0 {
			return &Response{Type: RespNotFound}, nil
		}
		return &Response{Type: RespValue, Entries: entries}, nil
	}

	return &Response{Type: RespValues, Entries: entries}, nil
}

// readValueBlock parses a "VALUE <key> <flags> <bytes> [<cas>]" header and
// reads its payload. The payload is read by explicit byte count, never by
// scanning for CRLF: the data may itself contain CRLF bytes.
func readValueBlock(r *bufio.Reader, header []byte, wantCAS bool) (Entry, error) {
	if !bytes.HasPrefix(header, valuePrefix) {
		return Entry{}, &ParseError{Message: "unexpected line in fetch response: " + string(header)}
	}

	fields := strings.Fields(string(header[len(valuePrefix):]))
	if len(fields) < 3 || len(fields) > 4 {
		return Entry{}, &ParseError{Message: "malformed VALUE header: " + string(header)}
	}

	key, err := ParseKey(fields[0])
	if err != nil {
		return Entry{}, &ParseError{Message: "invalid key in VALUE header", Err: err}
	}

	flags, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Entry{}, &ParseError{Message: "invalid flags in VALUE header", Err: err}
	}

	size, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return Entry{}, &ParseError{Message: "invalid size in VALUE header", Err: err}
	}
	if size > MaxValueLength {
		return Entry{}, &ParseError{Message: "value size exceeds protocol limit: " + fields[2]}
	}

	item := Item{Flags: uint32(flags)}

	if len(fields) == 4 {
		cas, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return Entry{}, &ParseError{Message: "invalid cas in VALUE header", Err: err}
		}
		item.CAS = cas
		item.HasCAS = true
	} else if wantCAS {
		return Entry{}, &ParseError{Message: "gets response missing cas token"}
	}

	// Read data + CRLF together in a single read
	data := make([]byte, size+2)
	if _, err := io.ReadFull(r, data); err != nil {
		return Entry{}, &ParseError{Message: "failed to read value block", Err: err}
	}
	if !bytes.HasSuffix(data, crlfBytes) {
		return Entry{}, &ParseError{Message: "value block not terminated by CRLF"}
	}
	item.Data = data[:size]

	return Entry{Key: key, Item: item}, nil
}

func readVersionResponse(r *bufio.Reader) (*Response, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	if serr := serverErrorLine(line); serr != nil {
		return &Response{Error: serr}, nil
	}

	if !bytes.HasPrefix(line, versionPrefix) {
		return nil, &ParseError{Message: "unexpected version response: " + string(line)}
	}

	// The whole remainder of the line is the version string.
	return &Response{Type: RespVersion, Version: string(line[len(versionPrefix):])}, nil
}

func readStatsResponse(r *bufio.Reader) (*Response, error) {
	resp := &Response{Type: RespStats}

	for {
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}

		if serr := serverErrorLine(line); serr != nil {
			return &Response{Error: serr}, nil
		}

		if bytes.Equal(line, endBytes) {
			return resp, nil
		}

		if !bytes.HasPrefix(line, statPrefix) {
			return nil, &ParseError{Message: "unexpected line in stats response: " + string(line)}
		}

		name, value, found := strings.Cut(string(line[len(statPrefix):]), " ")
		if !found {
			return nil, &ParseError{Message: "malformed STAT line: " + string(line)}
		}

		resp.Stats = append(resp.Stats, ParseStat(name, value))
	}
}
