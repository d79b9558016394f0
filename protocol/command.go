package protocol

// Family groups commands by the shape of their response.
type Family int

const (
	// FamilyAck commands get one status line, or a bare counter value
	// for incr/decr.
	FamilyAck Family = iota

	// FamilyFetch commands get zero or more VALUE blocks, then END.
	FamilyFetch

	// FamilyVersion commands get one VERSION line.
	FamilyVersion

	// FamilyStats commands get STAT lines, then END.
	FamilyStats

	// FamilyNone commands get no reply at all.
	FamilyNone
)

// Command is one memcache request: the command name plus its keys, payload
// and modifiers. Construct commands through the New* functions.
type Command struct {
	Name    string
	Keys    []Key
	Item    Item
	HasItem bool
	Delta   uint64 // incr/decr amount
	NoReply bool   // suppress the server reply (storage and delete only)
}

// NewSet creates a set command: store unconditionally.
func NewSet(key Key, item Item) *Command {
	return newStorage(CmdSet, key, item)
}

// NewAdd creates an add command: store only if the key is absent.
func NewAdd(key Key, item Item) *Command {
	return newStorage(CmdAdd, key, item)
}

// NewReplace creates a replace command: store only if the key exists.
func NewReplace(key Key, item Item) *Command {
	return newStorage(CmdReplace, key, item)
}

// NewAppend creates an append command: concatenate after the existing value.
func NewAppend(key Key, item Item) *Command {
	return newStorage(CmdAppend, key, item)
}

// NewPrepend creates a prepend command: concatenate before the existing value.
func NewPrepend(key Key, item Item) *Command {
	return newStorage(CmdPrepend, key, item)
}

// NewCas creates a cas command: store only if the item's CAS token still
// matches the server's. The item must carry a token issued by a gets.
func NewCas(key Key, item Item) *Command {
	return newStorage(CmdCas, key, item)
}

func newStorage(name string, key Key, item Item) *Command {
	return &Command{Name: name, Keys: []Key{key}, Item: item, HasItem: true}
}

// NewGet creates a get command for one or more keys.
func NewGet(keys ...Key) *Command {
	return &Command{Name: CmdGet, Keys: keys}
}

// NewGets creates a gets command: like get, but every returned item carries
// a server-issued CAS token.
func NewGets(keys ...Key) *Command {
	return &Command{Name: CmdGets, Keys: keys}
}

// NewIncr creates an incr command.
func NewIncr(key Key, delta uint64) *Command {
	return &Command{Name: CmdIncr, Keys: []Key{key}, Delta: delta}
}

// NewDecr creates a decr command. The server clamps results below zero to 0.
func NewDecr(key Key, delta uint64) *Command {
	return &Command{Name: CmdDecr, Keys: []Key{key}, Delta: delta}
}

// NewDelete creates a delete command.
func NewDelete(key Key) *Command {
	return &Command{Name: CmdDelete, Keys: []Key{key}}
}

// NewVersion creates a version command.
func NewVersion() *Command {
	return &Command{Name: CmdVersion}
}

// NewStats creates a stats command.
func NewStats() *Command {
	return &Command{Name: CmdStats}
}

// NewQuit creates a quit command. The server closes the connection without
// replying.
func NewQuit() *Command {
	return &Command{Name: CmdQuit}
}

// Family returns the response family of the command. NoReply commands and
// quit have no response to read.
func (c *Command) Family() Family {
	if c.NoReply {
		return FamilyNone
	}

	switch c.Name {
	case CmdGet, CmdGets:
		return FamilyFetch
	case CmdVersion:
		return FamilyVersion
	case CmdStats:
		return FamilyStats
	case CmdQuit:
		return FamilyNone
	default:
		return FamilyAck
	}
}

// Key returns the first key of the command, or an empty key if it has none.
func (c *Command) Key() Key {
	if len(c.Keys) == 0 {
		return ""
	}
	return c.Keys[0]
}

// WantsCAS reports whether VALUE headers in the response must carry a CAS
// token.
func (c *Command) WantsCAS() bool {
	return c.Name == CmdGets
}
