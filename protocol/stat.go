package protocol

import "strconv"

// StatKind identifies a well-known server statistic.
type StatKind int

const (
	// StatOther is the fallback for names this client does not know.
	// The zero value, so unknown names decode to it naturally.
	StatOther StatKind = iota

	StatPid
	StatUptime
	StatTime
	StatVersion
	StatPointerSize
	StatCurrConnections
	StatTotalConnections
	StatCmdGet
	StatCmdSet
	StatGetHits
	StatGetMisses
	StatCurrItems
	StatTotalItems
	StatBytes
	StatEvictions
	StatThreads
	StatLimitMaxbytes
)

var statKinds = map[string]StatKind{
	"pid":               StatPid,
	"uptime":            StatUptime,
	"time":              StatTime,
	"version":           StatVersion,
	"pointer_size":      StatPointerSize,
	"curr_connections":  StatCurrConnections,
	"total_connections": StatTotalConnections,
	"cmd_get":           StatCmdGet,
	"cmd_set":           StatCmdSet,
	"get_hits":          StatGetHits,
	"get_misses":        StatGetMisses,
	"curr_items":        StatCurrItems,
	"total_items":       StatTotalItems,
	"bytes":             StatBytes,
	"evictions":         StatEvictions,
	"threads":           StatThreads,
	"limit_maxbytes":    StatLimitMaxbytes,
}

// Stat is a typed view over one "STAT <name> <value>" line.
type Stat struct {
	Kind  StatKind
	Name  string // raw name as sent by the server
	Value string
}

// ParseStat decodes one STAT line. It never fails: unrecognized names map
// to StatOther with the raw name preserved.
func ParseStat(name, value string) Stat {
	return Stat{
		Kind:  statKinds[name],
		Name:  name,
		Value: value,
	}
}

// Uint64 parses the stat value as an unsigned counter.
// Most memcached statistics are counters; textual ones (e.g. version)
// return an error here.
func (s Stat) Uint64() (uint64, error) {
	return strconv.ParseUint(s.Value, 10, 64)
}
