package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"snoop"
	"snoop/internal/replay"
)

var (
	viewKind   string
	viewFollow bool
)

func init() {
	viewCmd.Flags().StringVar(&viewKind, "kind", "", "only show events of this kind (call|line|return|exception|announce)")
	viewCmd.Flags().BoolVar(&viewFollow, "follow", false, "keep reading as the trace file grows (NDJSON only)")
}

var viewCmd = &cobra.Command{
	Use:   "view <trace-file>",
	Short: "Print a recorded trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyColor(cmd, cfg); err != nil {
			return err
		}

		var kind snoop.Kind
		if viewKind != "" {
			kind, err = snoop.ParseKind(viewKind)
			if err != nil {
				return err
			}
		}

		if viewFollow {
			if strings.HasSuffix(args[0], ".strace") {
				return fmt.Errorf("--follow supports NDJSON traces only")
			}
			return followTrace(cmd, args[0], kind)
		}

		events, err := replay.ReadFile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		shown := 0
		counts := make(map[snoop.Kind]int)
		for i := range events {
			counts[events[i].Kind]++
			if kind != 0 && events[i].Kind != kind {
				continue
			}
			fmt.Fprint(out, renderEventLine(&events[i]))
			shown++
		}

		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		if !quiet {
			printSummary(cmd.ErrOrStderr(), len(events), shown, counts)
		}
		return nil
	},
}

// renderEventLine formats one event as text, colorized by severity.
func renderEventLine(ev *snoop.Event) string {
	line := string(snoop.FormatEvent(ev, snoop.FormatText))
	switch {
	case ev.Kind == snoop.KindException || ev.Level == snoop.LevelError:
		return color.New(color.FgRed).Sprint(line)
	case ev.Level == snoop.LevelWarning:
		return color.New(color.FgYellow).Sprint(line)
	case ev.Level == snoop.LevelSuccess:
		return color.New(color.FgGreen).Sprint(line)
	default:
		return line
	}
}

func printSummary(w io.Writer, total, shown int, counts map[snoop.Kind]int) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "\n%d events", total)
	if shown != total {
		p.Fprintf(w, " (%d shown)", shown)
	}
	for _, k := range []snoop.Kind{snoop.KindCall, snoop.KindLine, snoop.KindReturn, snoop.KindException, snoop.KindAnnounce} {
		if counts[k] > 0 {
			p.Fprintf(w, ", %d %s", counts[k], k)
		}
	}
	fmt.Fprintln(w)
}

// followTrace prints the current contents of an NDJSON trace and keeps
// printing new events as the file grows, until the command is cancelled.
func followTrace(cmd *cobra.Command, path string, kind snoop.Kind) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch trace: %w", err)
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(f)
	var pending string

	emit := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		ev, err := snoop.UnmarshalNDJSON([]byte(line))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping malformed record: %v\n", err)
			return
		}
		if kind != 0 && ev.Kind != kind {
			return
		}
		fmt.Fprint(out, renderEventLine(&ev))
	}

	if err := drainLines(reader, &pending, emit); err != nil {
		return err
	}

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Write) {
				if err := drainLines(reader, &pending, emit); err != nil {
					return err
				}
			}
			if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
				return fmt.Errorf("trace file went away")
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch trace: %w", werr)
		}
	}
}

// drainLines reads complete lines, carrying a trailing partial line in
// pending until the writer finishes it.
func drainLines(r *bufio.Reader, pending *string, emit func(string)) error {
	for {
		chunk, err := r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			*pending += chunk
			return nil
		}
		if err != nil {
			return fmt.Errorf("read trace: %w", err)
		}
		emit(*pending + chunk)
		*pending = ""
	}
}
