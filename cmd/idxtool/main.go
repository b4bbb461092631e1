// Command idxtool is an interactive shell over a single B+-tree index,
// modeled on the teacher's cmd/client REPL (readline-driven, meta commands
// prefixed with backslash) but driving internal/btree.Handle directly
// instead of a SQL wire protocol.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"example.com/btreeidx/internal"
	"example.com/btreeidx/internal/btree"
	"example.com/btreeidx/internal/heapfile"
)

func main() {
	var (
		cfgPath  = flag.String("config", "idxtool.yaml", "path to idxtool yaml config")
		dir      = flag.String("dir", "", "index file directory (overrides config)")
		relation = flag.String("relation", "relation", "relation name the index is built over")
		offset   = flag.Int("offset", -1, "key byte offset within a heap record (overrides config)")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		cfg = &internal.IdxToolConfig{}
		cfg.Index.BufferPoolCapacity = 64
		cfg.Heap.RecordWidth = 16
		cfg.Heap.AttrByteOffset = 0
	}

	workdir := *dir
	if workdir == "" {
		workdir = cfg.Index.Dir
	}
	if workdir == "" {
		workdir = "./data"
	}
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create workdir: %v\n", err)
		os.Exit(1)
	}

	attrByteOffset := *offset
	if attrByteOffset < 0 {
		attrByteOffset = cfg.Heap.AttrByteOffset
	}

	h, err := btree.Open(workdir, *relation, uint32(attrByteOffset), cfg.Index.BufferPoolCapacity, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open index: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = h.Close() }()

	sh := &shell{h: h, workdir: workdir, relation: *relation, recordWidth: cfg.Heap.RecordWidth}
	sh.run()
}

type shell struct {
	h           *btree.Handle
	workdir     string
	relation    string
	recordWidth int
}

func (sh *shell) run() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "idxtool> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "\\q" || line == "quit" || line == "exit" {
			return
		}

		if err := sh.dispatch(line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func (sh *shell) dispatch(line string) error {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "\\help":
		printHelp()
		return nil
	case "insert":
		return sh.cmdInsert(args)
	case "search":
		return sh.cmdSearch(args)
	case "scan":
		return sh.cmdScan(args)
	case "dump":
		fmt.Print(sh.h.DebugDump())
		return nil
	case "loadheap":
		return sh.cmdLoadHeap(args)
	default:
		return fmt.Errorf("unknown command %q (try \\help)", cmd)
	}
}

func printHelp() {
	fmt.Print(`meta commands:
  \q | quit | exit                 quit

index commands:
  insert <key> <page> <slot>       insert one (key, rid) entry
  search <key>                     print every rid stored under key
  scan <low> <lowOp> <high> <highOp>  range scan; ops are one of gt,gte,lt,lte
  dump                             print the tree structure
  loadheap <heapfile> <recordWidth> <attrByteOffset>
                                    bulk-insert every record from a heap file
`)
}

func (sh *shell) cmdInsert(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: insert <key> <page> <slot>")
	}
	key, err := parseKey(args[0])
	if err != nil {
		return err
	}
	page, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("bad page: %w", err)
	}
	slot, err := strconv.ParseUint(args[2], 10, 16)
	if err != nil {
		return fmt.Errorf("bad slot: %w", err)
	}
	return sh.h.InsertEntry(key, btree.RID{Page: uint32(page), Slot: uint16(slot)})
}

func (sh *shell) cmdSearch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: search <key>")
	}
	key, err := parseKey(args[0])
	if err != nil {
		return err
	}
	rids, err := sh.h.SearchEqual(key)
	if err != nil {
		return err
	}
	if len(rids) == 0 {
		fmt.Println("(no match)")
		return nil
	}
	for _, r := range rids {
		fmt.Printf("page=%d slot=%d\n", r.Page, r.Slot)
	}
	return nil
}

func (sh *shell) cmdScan(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: scan <low> <lowOp> <high> <highOp>")
	}
	low, err := parseKey(args[0])
	if err != nil {
		return err
	}
	lowOp, err := parseOp(args[1])
	if err != nil {
		return err
	}
	high, err := parseKey(args[2])
	if err != nil {
		return err
	}
	highOp, err := parseOp(args[3])
	if err != nil {
		return err
	}

	if err := sh.h.StartScan(low, lowOp, high, highOp); err != nil {
		return err
	}
	defer func() { _ = sh.h.EndScan() }()

	for {
		r, err := sh.h.ScanNext()
		if err == btree.ErrIndexScanCompleted {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("page=%d slot=%d\n", r.Page, r.Slot)
	}
}

func (sh *shell) cmdLoadHeap(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: loadheap <heapfile> <recordWidth> <attrByteOffset>")
	}
	recordWidth, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad recordWidth: %w", err)
	}

	hf, err := heapfile.Open(args[0], recordWidth)
	if err != nil {
		return fmt.Errorf("open heap file: %w", err)
	}
	defer func() { _ = hf.Close() }()

	scanner := heapfile.NewScanner(hf)
	attrByteOffset, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("bad attrByteOffset: %w", err)
	}

	count := 0
	for {
		rid, err := scanner.ScanNext()
		if err != nil {
			if err == heapfile.ErrEndOfFile {
				break
			}
			return err
		}
		rec, err := scanner.GetRecord()
		if err != nil {
			return err
		}
		key := btree.RecordKey(rec, uint32(attrByteOffset))
		if err := sh.h.InsertEntry(key, btree.RID{Page: rid.PageID, Slot: rid.Slot}); err != nil {
			return err
		}
		count++
	}
	fmt.Printf("inserted %d entries\n", count)
	return nil
}

func parseKey(s string) (btree.KeyType, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad key: %w", err)
	}
	return int32(v), nil
}

func parseOp(s string) (btree.Op, error) {
	switch strings.ToLower(s) {
	case "lt":
		return btree.LT, nil
	case "lte":
		return btree.LTE, nil
	case "gt":
		return btree.GT, nil
	case "gte":
		return btree.GTE, nil
	default:
		return 0, fmt.Errorf("bad operator %q (want one of lt,lte,gt,gte)", s)
	}
}
