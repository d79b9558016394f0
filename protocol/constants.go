package protocol

// Classic text protocol command names.
const (
	CmdSet     = "set"
	CmdAdd     = "add"
	CmdReplace = "replace"
	CmdAppend  = "append"
	CmdPrepend = "prepend"
	CmdCas     = "cas"
	CmdGet     = "get"
	CmdGets    = "gets"
	CmdIncr    = "incr"
	CmdDecr    = "decr"
	CmdDelete  = "delete"
	CmdVersion = "version"
	CmdStats   = "stats"
	CmdQuit    = "quit"
)

// Response tokens.
const (
	TokenStored    = "STORED"
	TokenNotStored = "NOT_STORED"
	TokenExists    = "EXISTS"
	TokenDeleted   = "DELETED"
	TokenNotFound  = "NOT_FOUND"
	TokenValue     = "VALUE"
	TokenEnd       = "END"
	TokenStat      = "STAT"
	TokenVersion   = "VERSION"
)

// Error line markers. A bare ERROR line carries no message; the other two
// carry the server message after the prefix.
const (
	ErrorGeneric      = "ERROR"
	ErrorClientPrefix = "CLIENT_ERROR"
	ErrorServerPrefix = "SERVER_ERROR"
)

const (
	CRLF  = "\r\n"
	Space = " "
)

// Protocol constants
const (
	MaxKeyLength   = 250     // Maximum key length in bytes
	MaxValueLength = 1048576 // 1MB - typical memcached limit
)
