package memento

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// createListener starts an in-process TCP server and returns its address.
func createListener(t testing.TB, handler func(conn net.Conn)) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}

	t.Cleanup(func() {
		listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

// lineResponder answers every received line with the corresponding canned
// response, then closes the connection.
func lineResponder(responses ...string) func(conn net.Conn) {
	return func(conn net.Conn) {
		reader := bufio.NewReader(conn)
		for _, response := range responses {
			if _, err := reader.ReadString('\n'); err != nil {
				return
			}
			if _, err := conn.Write([]byte(response)); err != nil {
				return
			}
		}
	}
}

type fakeEntry struct {
	data  []byte
	flags uint32
	cas   uint64
}

// fakeMemcached is a minimal in-memory memcached speaking the classic text
// protocol, enough to exercise the client against a real socket.
type fakeMemcached struct {
	mu     sync.Mutex
	items  map[string]*fakeEntry
	casSeq uint64
}

func newFakeMemcached() *fakeMemcached {
	return &fakeMemcached{items: make(map[string]*fakeEntry)}
}

func (s *fakeMemcached) listen(t testing.TB) string {
	return createListener(t, s.handle)
}

func (s *fakeMemcached) handle(conn net.Conn) {
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		fields := strings.Fields(strings.TrimRight(line, "\r\n"))
		if len(fields) == 0 {
			fmt.Fprint(conn, "ERROR\r\n")
			continue
		}

		switch fields[0] {
		case "set", "add", "replace", "append", "prepend", "cas":
			if err := s.handleStorage(conn, reader, fields[0], fields[1:]); err != nil {
				return
			}
		case "get", "gets":
			s.handleGet(conn, fields[0] == "gets", fields[1:])
		case "incr", "decr":
			s.handleArithmetic(conn, fields[0], fields[1:])
		case "delete":
			s.handleDelete(conn, fields[1:])
		case "version":
			fmt.Fprint(conn, "VERSION 1.6.38\r\n")
		case "stats":
			s.handleStats(conn)
		case "quit":
			return
		default:
			fmt.Fprint(conn, "ERROR\r\n")
		}
	}
}

func (s *fakeMemcached) handleStorage(conn net.Conn, reader *bufio.Reader, cmd string, args []string) error {
	noreply := false
	if len(args) > 0 && args[len(args)-1] == "noreply" {
		noreply = true
		args = args[:len(args)-1]
	}

	want := 4
	if cmd == "cas" {
		want = 5
	}
	if len(args) != want {
		fmt.Fprint(conn, "ERROR\r\n")
		return fmt.Errorf("malformed storage command")
	}

	key := args[0]
	flags, _ := strconv.ParseUint(args[1], 10, 32)
	size, err := strconv.Atoi(args[3])
	if err != nil {
		fmt.Fprint(conn, "ERROR\r\n")
		return err
	}

	// Payload is length-delimited, CRLF terminated.
	payload := make([]byte, size+2)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return err
	}
	data := payload[:size]

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.items[key]
	reply := "STORED\r\n"

	switch cmd {
	case "set":
		s.storeLocked(key, data, uint32(flags))
	case "add":
		if exists {
			reply = "NOT_STORED\r\n"
		} else {
			s.storeLocked(key, data, uint32(flags))
		}
	case "replace":
		if !exists {
			reply = "NOT_STORED\r\n"
		} else {
			s.storeLocked(key, data, uint32(flags))
		}
	case "append":
		if !exists {
			reply = "NOT_STORED\r\n"
		} else {
			s.storeLocked(key, append(append([]byte{}, entry.data...), data...), entry.flags)
		}
	case "prepend":
		if !exists {
			reply = "NOT_STORED\r\n"
		} else {
			s.storeLocked(key, append(append([]byte{}, data...), entry.data...), entry.flags)
		}
	case "cas":
		casToken, _ := strconv.ParseUint(args[4], 10, 64)
		switch {
		case !exists:
			reply = "NOT_FOUND\r\n"
		case entry.cas != casToken:
			reply = "EXISTS\r\n"
		default:
			s.storeLocked(key, data, uint32(flags))
		}
	}

	if noreply {
		return nil
	}
	fmt.Fprint(conn, reply)
	return nil
}

func (s *fakeMemcached) storeLocked(key string, data []byte, flags uint32) {
	s.casSeq++
	s.items[key] = &fakeEntry{data: data, flags: flags, cas: s.casSeq}
}

func (s *fakeMemcached) handleGet(conn net.Conn, withCAS bool, keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		entry, ok := s.items[key]
		if !ok {
			continue
		}
		if withCAS {
			fmt.Fprintf(conn, "VALUE %s %d %d %d\r\n", key, entry.flags, len(entry.data), entry.cas)
		} else {
			fmt.Fprintf(conn, "VALUE %s %d %d\r\n", key, entry.flags, len(entry.data))
		}
		conn.Write(entry.data)
		fmt.Fprint(conn, "\r\n")
	}
	fmt.Fprint(conn, "END\r\n")
}

func (s *fakeMemcached) handleArithmetic(conn net.Conn, cmd string, args []string) {
	if len(args) != 2 {
		fmt.Fprint(conn, "ERROR\r\n")
		return
	}

	delta, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Fprint(conn, "CLIENT_ERROR invalid numeric delta argument\r\n")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[args[0]]
	if !ok {
		fmt.Fprint(conn, "NOT_FOUND\r\n")
		return
	}

	current, err := strconv.ParseUint(string(entry.data), 10, 64)
	if err != nil {
		fmt.Fprint(conn, "CLIENT_ERROR cannot increment or decrement non-numeric value\r\n")
		return
	}

	if cmd == "incr" {
		current += delta
	} else if delta > current {
		current = 0 // decrement clamps at zero
	} else {
		current -= delta
	}

	entry.data = []byte(strconv.FormatUint(current, 10))
	fmt.Fprintf(conn, "%d\r\n", current)
}

func (s *fakeMemcached) handleDelete(conn net.Conn, args []string) {
	if len(args) == 0 {
		fmt.Fprint(conn, "ERROR\r\n")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[args[0]]; !ok {
		fmt.Fprint(conn, "NOT_FOUND\r\n")
		return
	}

	delete(s.items, args[0])
	fmt.Fprint(conn, "DELETED\r\n")
}

func (s *fakeMemcached) handleStats(conn net.Conn) {
	s.mu.Lock()
	items := len(s.items)
	s.mu.Unlock()

	fmt.Fprint(conn, "STAT pid 1234\r\n")
	fmt.Fprint(conn, "STAT version 1.6.38\r\n")
	fmt.Fprint(conn, "STAT cmd_get 10\r\n")
	fmt.Fprint(conn, "STAT cmd_set 5\r\n")
	fmt.Fprintf(conn, "STAT curr_items %d\r\n", items)
	fmt.Fprint(conn, "STAT slab_reassign_rescues 0\r\n")
	fmt.Fprint(conn, "END\r\n")
}
