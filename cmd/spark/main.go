// Command spark manages memos from the terminal, sharing the storage file
// with the server's file backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/easycodehow/spark/internal/config"
	"github.com/easycodehow/spark/internal/memos"
	"github.com/easycodehow/spark/internal/storage"
	"github.com/easycodehow/spark/internal/ui"
)

var errUsage = errors.New("usage")

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, time.Now); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "spark: %v\n", err)
		}
		os.Exit(1)
	}
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Spark - quick memos\n\n")
	fmt.Fprintf(w, "Usage: spark [options] <command> [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  add [-star] <text>     Create a memo\n")
	fmt.Fprintf(w, "  list [-star]           List memos, newest first\n")
	fmt.Fprintf(w, "  search <keyword>       Case-insensitive search\n")
	fmt.Fprintf(w, "  star <id>              Toggle the important star\n")
	fmt.Fprintf(w, "  edit <id> <text>       Replace the content of a memo\n")
	fmt.Fprintf(w, "  rm <id>                Delete a memo\n")
	fmt.Fprintf(w, "  export [file|-]        Write a backup file (default: spark-memos-<date>.json)\n")
	fmt.Fprintf(w, "  import <file>          Merge a backup file, skipping known ids\n")
	fmt.Fprintf(w, "  copy <id>              Copy a memo to the clipboard\n")
	fmt.Fprintf(w, "\nOptions:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func run(ctx context.Context, args []string, out io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("spark", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configFile := fs.String("config", "", "config file shared with the server (default: spark.{json,yaml} in . or ~/.spark)")
	path := fs.String("storage", "", "storage file (default: storage.path from config, else ~/.spark/storage.json)")
	dateLayout := fs.String("date-layout", "", "Go time layout for new memo dates (default: date_layout from config)")
	if err := fs.Parse(args); err != nil {
		usage(out, fs)
		return errUsage
	}
	if fs.NArg() == 0 {
		usage(out, fs)
		return errUsage
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	if *path == "" {
		*path = cfg.Storage.Path
	}
	if *dateLayout == "" {
		*dateLayout = cfg.DateLayout
	}

	kv, err := storage.NewFileStore(*path)
	if errors.Is(err, storage.ErrCorrupt) {
		fmt.Fprintf(out, "warning: %v; backup written to %s\n", err, kv.BackupPath())
	} else if err != nil {
		return err
	}
	store := memos.NewStore(kv, memos.WithClock(now), memos.WithDateLayout(*dateLayout))
	if err := store.LoadAll(ctx); err != nil {
		if !errors.Is(err, memos.ErrCorruptSnapshot) {
			return err
		}
		fmt.Fprintf(out, "warning: %v; starting with an empty list\n", err)
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "add":
		sub := flag.NewFlagSet("add", flag.ContinueOnError)
		sub.SetOutput(io.Discard)
		star := sub.Bool("star", false, "mark important")
		if err := sub.Parse(rest); err != nil {
			return err
		}
		m, err := store.Create(ctx, strings.Join(sub.Args(), " "), *star)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added %d\n", m.ID)

	case "list":
		sub := flag.NewFlagSet("list", flag.ContinueOnError)
		sub.SetOutput(io.Discard)
		star := sub.Bool("star", false, "important only")
		if err := sub.Parse(rest); err != nil {
			return err
		}
		printList(out, ui.Filtered(store.All(), "", *star))

	case "search":
		printList(out, store.Search(strings.Join(rest, " ")))

	case "star":
		m, err := lookup(store, rest)
		if err != nil {
			return err
		}
		if _, err := store.Update(ctx, m.ID, m.Content, !m.IsImportant); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d important: %t\n", m.ID, !m.IsImportant)

	case "edit":
		m, err := lookup(store, rest)
		if err != nil {
			return err
		}
		if _, err := store.Update(ctx, m.ID, strings.Join(rest[1:], " "), m.IsImportant); err != nil {
			return err
		}
		fmt.Fprintf(out, "updated %d\n", m.ID)

	case "rm":
		m, err := lookup(store, rest)
		if err != nil {
			return err
		}
		if _, err := store.Delete(ctx, m.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %d\n", m.ID)

	case "export":
		data, err := memos.MarshalExport(store.All())
		if err != nil {
			return err
		}
		target := memos.ExportFilename(now())
		if len(rest) > 0 {
			target = rest[0]
		}
		if target == "-" {
			_, err := out.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(out, "exported %d memos to %s\n", store.Len(), target)

	case "import":
		if len(rest) != 1 {
			return fmt.Errorf("import needs exactly one file")
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}
		list, err := memos.ParseSnapshot(data)
		if err != nil {
			return fmt.Errorf("failed to import file: %w", err)
		}
		n, err := store.ImportMerge(ctx, list)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d memos\n", n)

	case "copy":
		m, err := lookup(store, rest)
		if err != nil {
			return err
		}
		if err := writeClipboard(m.Content); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Fprintln(out, ui.MsgCopied)

	default:
		usage(out, fs)
		return errUsage
	}
	return nil
}

func lookup(store *memos.Store, args []string) (*memos.Memo, error) {
	if len(args) == 0 {
		return nil, errors.New("memo id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid memo id %q", args[0])
	}
	m, ok := store.Get(id)
	if !ok {
		return nil, fmt.Errorf("memo %d not found", id)
	}
	return m, nil
}

func printList(out io.Writer, list []memos.Memo) {
	if len(list) == 0 {
		fmt.Fprintln(out, ui.EmptyListText)
		return
	}
	for _, m := range list {
		star := " "
		if m.IsImportant {
			star = "*"
		}
		fmt.Fprintf(out, "%d %s %-12s %s\n", m.ID, star, m.Date, ui.CardTitle(m.Content))
	}
}
