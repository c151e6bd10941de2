package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"rcuhashlist/internal/keyset"
	"rcuhashlist/internal/numa"
)

func main() {
	protoName := flag.String("protocol", "rcu", "synchronization protocol to exercise")
	buckets := flag.Int("buckets", 1, "number of hash buckets")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	proto, ok := keyset.Registry[*protoName]
	if !ok {
		fmt.Println("unknown protocol:", *protoName)
		fmt.Println("available:", strings.Join(keyset.Names(), ", "))
		return
	}

	topo := numa.Discover()
	set := keyset.NewSet(*buckets, topo.NodeCount())

	fmt.Printf("rcuhashlist interactive shell. protocol=%s buckets=%d numaNodes=%d\n",
		proto.Name, *buckets, topo.NodeCount())
	fmt.Println("Available commands: add/remove/contains/size/use/exit")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	ctx := context.Background()

	for {
		input, err := line.Prompt(fmt.Sprintf("rcuhashlist[%s]> ", proto.Name))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)

		args := strings.Fields(strings.TrimSpace(input))
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "add":
			if len(args) < 2 {
				fmt.Println("usage: add <key>")
				continue
			}
			key, err := parseKey(args[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			result := proto.Add(ctx, set, key, 0)
			fmt.Println(result)

		case "remove":
			if len(args) < 2 {
				fmt.Println("usage: remove <key>")
				continue
			}
			key, err := parseKey(args[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			result := proto.Del(ctx, set, key, 0)
			fmt.Println(result)

		case "contains":
			if len(args) < 2 {
				fmt.Println("usage: contains <key>")
				continue
			}
			key, err := parseKey(args[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println(set.Contains(key))

		case "size":
			fmt.Println(set.Size())

		case "use":
			if len(args) < 2 {
				fmt.Println("usage: use <protocol>")
				continue
			}
			next, ok := keyset.Registry[args[1]]
			if !ok {
				fmt.Println("unknown protocol:", args[1])
				fmt.Println("available:", strings.Join(keyset.Names(), ", "))
				continue
			}
			proto = next
			fmt.Println("switched to protocol:", proto.Name)

		case "exit", "quit":
			fmt.Println("bye!")
			return

		default:
			fmt.Println("unknown command:", args[0])
		}
	}
}

func parseKey(s string) (keyset.Key, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return keyset.Key(n), nil
}
