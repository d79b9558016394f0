package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"
)

// Buffer pool for building requests
var bufferPool = sync.Pool{
	New: func() any {
		// Typical request is well under 256 bytes before the payload
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// EncodeCommand renders cmd into the exact byte sequence the server expects.
// Pure: a validation failure means nothing was encoded and nothing must be
// written to the connection.
//
// Wire format:
//
//	storage:    <name> <key> <flags> <exptime> <bytes>[ <cas>][ noreply]\r\n<data>\r\n
//	fetch:      get|gets <key>[ <key>...]\r\n
//	arithmetic: incr|decr <key> <delta>\r\n
//	delete:     delete <key>[ noreply]\r\n
//	other:      version\r\n, stats\r\n, quit\r\n
func EncodeCommand(cmd *Command) ([]byte, error) {
	if err := ValidateCommand(cmd); err != nil {
		return nil, err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	buf.WriteString(cmd.Name)

	switch cmd.Name {
	case CmdSet, CmdAdd, CmdReplace, CmdAppend, CmdPrepend, CmdCas:
		buf.WriteByte(' ')
		buf.WriteString(string(cmd.Keys[0]))
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatUint(uint64(cmd.Item.Flags), 10))
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatInt(cmd.Item.ExptimeSeconds(), 10))
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(len(cmd.Item.Data)))
		if cmd.Name == CmdCas {
			buf.WriteByte(' ')
			buf.WriteString(strconv.FormatUint(cmd.Item.CAS, 10))
		}
		if cmd.NoReply {
			buf.WriteString(" noreply")
		}
		buf.WriteString(CRLF)
		buf.Write(cmd.Item.Data)
		buf.WriteString(CRLF)

	case CmdGet, CmdGets:
		for _, key := range cmd.Keys {
			buf.WriteByte(' ')
			buf.WriteString(string(key))
		}
		buf.WriteString(CRLF)

	case CmdIncr, CmdDecr:
		buf.WriteByte(' ')
		buf.WriteString(string(cmd.Keys[0]))
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatUint(cmd.Delta, 10))
		buf.WriteString(CRLF)

	case CmdDelete:
		buf.WriteByte(' ')
		buf.WriteString(string(cmd.Keys[0]))
		if cmd.NoReply {
			buf.WriteString(" noreply")
		}
		buf.WriteString(CRLF)

	case CmdVersion, CmdStats, CmdQuit:
		buf.WriteString(CRLF)
	}

	// The pooled buffer is reused, hand back a copy.
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// ValidateCommand checks keys, payload size and command-specific
// preconditions without producing any bytes.
func ValidateCommand(cmd *Command) error {
	switch cmd.Name {
	case CmdVersion, CmdStats, CmdQuit:
		return nil

	case CmdGet, CmdGets:
		if len(cmd.Keys) == 0 {
			return &InvalidKeyError{Message: "at least one key is required"}
		}

	case CmdSet, CmdAdd, CmdReplace, CmdAppend, CmdPrepend, CmdCas,
		CmdIncr, CmdDecr, CmdDelete:
		if len(cmd.Keys) != 1 {
			return &InvalidKeyError{Message: "exactly one key is required"}
		}

	default:
		return fmt.Errorf("memento: unknown command %q", cmd.Name)
	}

	for _, key := range cmd.Keys {
		if _, err := ParseKey(string(key)); err != nil {
			return err
		}
	}

	if cmd.HasItem {
		if len(cmd.Item.Data) > MaxValueLength {
			return &InvalidItemError{Message: "value exceeds maximum size of " + strconv.Itoa(MaxValueLength) + " bytes"}
		}
		if cmd.Name == CmdCas && !cmd.Item.HasCAS {
			return &InvalidItemError{Message: "cas requires an item with a server-issued cas token"}
		}
	}

	if cmd.NoReply && cmd.Name != CmdDelete && !cmd.HasItem {
		return fmt.Errorf("memento: noreply is not supported for %q", cmd.Name)
	}

	return nil
}
