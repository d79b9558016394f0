package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kafkiansky/memento"
	"github.com/kafkiansky/memento/protocol"
)

func main() {
	addr := flag.String("addr", "localhost:11211", "memcached address")
	flag.Parse()

	fmt.Println("Memento CLI")
	fmt.Println("===========")
	fmt.Println("Commands: get <key>, gets <key>..., set <key> <value> [ttl], delete <key>, incr <key> <delta>, decr <key> <delta>, stats, version, quit")
	fmt.Println()

	ctx := context.Background()

	client, err := memento.Connect(ctx, *addr, memento.Config{DialTimeout: 5 * time.Second})
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "get":
			if len(parts) != 2 {
				fmt.Println("Usage: get <key>")
				continue
			}
			handleFetch(ctx, client, false, parts[1:])

		case "gets":
			if len(parts) < 2 {
				fmt.Println("Usage: gets <key> [key...]")
				continue
			}
			handleFetch(ctx, client, true, parts[1:])

		case "set":
			if len(parts) < 3 || len(parts) > 4 {
				fmt.Println("Usage: set <key> <value> [ttl_seconds]")
				continue
			}
			handleSet(ctx, client, parts[1], parts[2], parts[3:])

		case "delete", "del":
			if len(parts) != 2 {
				fmt.Println("Usage: delete <key>")
				continue
			}
			handleSimple(func(key protocol.Key) (*protocol.Response, error) {
				return client.Delete(ctx, key)
			}, parts[1])

		case "incr", "decr":
			if len(parts) != 3 {
				fmt.Printf("Usage: %s <key> <delta>\n", parts[0])
				continue
			}
			handleArithmetic(ctx, client, parts[0], parts[1], parts[2])

		case "stats":
			handleStats(ctx, client)

		case "version":
			resp, err := client.Version(ctx)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println(resp.Version)

		case "quit", "exit":
			client.Quit(ctx)
			return

		default:
			fmt.Printf("Unknown command: %s\n", parts[0])
		}
	}
}

func handleFetch(ctx context.Context, client *memento.Client, withCAS bool, rawKeys []string) {
	keys := make([]protocol.Key, 0, len(rawKeys))
	for _, raw := range rawKeys {
		key, err := protocol.ParseKey(raw)
		if err != nil {
			fmt.Printf("Invalid key %q: %v\n", raw, err)
			return
		}
		keys = append(keys, key)
	}

	var resp *protocol.Response
	var err error
	if withCAS {
		resp, err = client.Gets(ctx, keys...)
	} else {
		resp, err = client.Get(ctx, keys[0])
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if resp.IsMiss() {
		fmt.Println("(not found)")
		return
	}
	for _, entry := range resp.Entries {
		if entry.Item.HasCAS {
			fmt.Printf("%s = %s (flags=%d cas=%d)\n", entry.Key, entry.Item, entry.Item.Flags, entry.Item.CAS)
		} else {
			fmt.Printf("%s = %s (flags=%d)\n", entry.Key, entry.Item, entry.Item.Flags)
		}
	}
}

func handleSet(ctx context.Context, client *memento.Client, rawKey, value string, rest []string) {
	key, err := protocol.ParseKey(rawKey)
	if err != nil {
		fmt.Printf("Invalid key: %v\n", err)
		return
	}

	item := protocol.Timeless([]byte(value))
	if len(rest) == 1 {
		seconds, err := strconv.Atoi(rest[0])
		if err != nil {
			fmt.Printf("Invalid TTL: %v\n", err)
			return
		}
		item = protocol.WithExpiration([]byte(value), time.Duration(seconds)*time.Second)
	}

	resp, err := client.Set(ctx, key, item)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(resp.Type)
}

func handleSimple(op func(protocol.Key) (*protocol.Response, error), rawKey string) {
	key, err := protocol.ParseKey(rawKey)
	if err != nil {
		fmt.Printf("Invalid key: %v\n", err)
		return
	}

	resp, err := op(key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(resp.Type)
}

func handleArithmetic(ctx context.Context, client *memento.Client, cmd, rawKey, rawDelta string) {
	key, err := protocol.ParseKey(rawKey)
	if err != nil {
		fmt.Printf("Invalid key: %v\n", err)
		return
	}

	delta, err := strconv.ParseUint(rawDelta, 10, 64)
	if err != nil {
		fmt.Printf("Invalid delta: %v\n", err)
		return
	}

	var resp *protocol.Response
	if cmd == "incr" {
		resp, err = client.Incr(ctx, key, delta)
	} else {
		resp, err = client.Decr(ctx, key, delta)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if resp.Type == protocol.RespCounter {
		fmt.Println(resp.Counter)
	} else {
		fmt.Println(resp.Type)
	}
}

func handleStats(ctx context.Context, client *memento.Client) {
	resp, err := client.Stats(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, stat := range resp.Stats {
		fmt.Printf("%s = %s\n", stat.Name, stat.Value)
	}
}
