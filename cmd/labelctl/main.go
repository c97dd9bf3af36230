package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bricklabels.dev/internal/label"
	"bricklabels.dev/internal/persistence/archive"
	"bricklabels.dev/internal/persistence/kv"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "export":
			exportCmd(os.Args[2:])
			return
		case "import":
			importCmd(os.Args[2:])
			return
		case "backups":
			backupsCmd(os.Args[2:])
			return
		case "restore":
			restoreCmd(os.Args[2:])
			return
		case "list":
			listCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func openStore(dataDir string) *label.Store {
	settings, err := kv.OpenSQLite(filepath.Join(dataDir, "labels.db"))
	if err != nil {
		fatal("open settings store:", err)
	}
	store := label.NewStore(settings)
	if err := store.Load(); err != nil {
		fatal("load labels:", err)
	}
	return store
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	labels := openStore(*dataDir).Snapshot()
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l := labels[k]
		fmt.Printf("%-24s %-20s %q\n", k, l.Owner.Name, l.Text)
	}
	fmt.Printf("%d labels\n", len(keys))
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	out := fs.String("out", "labels.json", "output file")
	_ = fs.Parse(args)

	labels := openStore(*dataDir).Snapshot()
	b, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		fatal("encode:", err)
	}
	if err := os.WriteFile(*out, append(b, '\n'), 0o644); err != nil {
		fatal("write:", err)
	}
	fmt.Printf("exported %d labels to %s\n", len(labels), *out)
}

func importCmd(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	in := fs.String("in", "labels.json", "input file")
	_ = fs.Parse(args)

	raw, err := os.ReadFile(*in)
	if err != nil {
		fatal("read:", err)
	}
	m, err := label.ParseMap(raw)
	if err != nil {
		fatal("parse:", err)
	}

	store := openStore(*dataDir)
	backup(store, *dataDir)
	if err := store.ReplaceAll(m); err != nil {
		fatal("replace:", err)
	}
	fmt.Printf("imported %d labels from %s\n", len(m), *in)
}

func backupsCmd(args []string) {
	fs := flag.NewFlagSet("backups", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	paths, err := archive.List(filepath.Join(*dataDir, "backups"))
	if err != nil {
		fatal("list backups:", err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

func restoreCmd(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	path := fs.String("path", "", "backup file to restore")
	_ = fs.Parse(args)

	if *path == "" {
		fatal("restore:", fmt.Errorf("missing -path"))
	}
	m, err := archive.Read(*path)
	if err != nil {
		fatal("read backup:", err)
	}

	store := openStore(*dataDir)
	backup(store, *dataDir)
	if err := store.ReplaceAll(m); err != nil {
		fatal("replace:", err)
	}
	fmt.Printf("restored %d labels from %s\n", len(m), *path)
}

func backup(store *label.Store, dataDir string) {
	if store.Len() == 0 {
		return
	}
	path, err := archive.Write(filepath.Join(dataDir, "backups"), store.Snapshot())
	if err != nil {
		fatal("backup:", err)
	}
	fmt.Printf("backed up current labels to %s\n", path)
}

func fatal(prefix string, err error) {
	fmt.Fprintln(os.Stderr, prefix, err)
	os.Exit(1)
}
