package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/workspaces"
)

func runWorkspaces(args []string) int {
	fs := flag.NewFlagSet("workspaces", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON instead of a table")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar workspaces [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List workspaces as the daemon currently sees them.")
		fs.PrintDefaults()
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	list, err := ipc.NewClient().GetWorkspaces()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMONITOR\tSTATE\tWINDOWS")
	for _, w := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", w.ID, w.Name, w.Monitor, w.Displayed, w.Windows)
	}
	tw.Flush()
	return 0
}

// parseWorkspaceArg parses the single <id> argument of switch and toggle.
// A lone negative id is taken as the id, not a flag.
func parseWorkspaceArg(fs *flag.FlagSet, args []string) (int, int) {
	if len(args) == 1 {
		if id, err := strconv.Atoi(args[0]); err == nil {
			return id, -1
		}
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, 0
		}
		return 0, 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one <id>\n", fs.Name())
		fs.Usage()
		return 0, 2
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid workspace id %q\n", fs.Arg(0))
		return 0, 2
	}
	return id, -1
}

func runSwitch(args []string) int {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar switch <id>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Switch to the workspace with a positive <id>.")
	}
	id, code := parseWorkspaceArg(fs, args)
	if code >= 0 {
		return code
	}

	if err := ipc.NewClient().ChangeWorkspace(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar toggle <id>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show or hide the special workspace with a negative <id>.")
		fmt.Fprintln(os.Stderr, "Run 'wsbar workspaces' to find special workspace ids.")
	}
	id, code := parseWorkspaceArg(fs, args)
	if code >= 0 {
		return code
	}

	if err := ipc.NewClient().ToggleSpecialWorkspace(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseDirection accepts a signed step such as +1, -1, next or prev.
func parseDirection(s string) (int, error) {
	switch s {
	case "next", "up":
		return 1, nil
	case "prev", "down":
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid direction %q (expected +1, -1, next or prev)", s)
	}
	return n, nil
}

func runScroll(args []string) int {
	fs := flag.NewFlagSet("scroll", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar scroll <+1|-1|next|prev>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move to the nearest workspace after or before the active one.")
	}
	if len(args) == 1 {
		if n, err := strconv.Atoi(args[0]); err == nil && n < 0 {
			args = []string{"--", args[0]}
		}
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	direction, err := parseDirection(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := ipc.NewClient().Scroll(direction); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTitle(args []string) int {
	fs := flag.NewFlagSet("title", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar title")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the focused window title (or class) as configured.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	title, err := ipc.NewClient().GetTitle()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(title)
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar watch")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print one JSON line per state change until interrupted.")
		fmt.Fprintln(os.Stderr, "Suitable as a data source for external bars.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	err := ipc.NewClient().Watch(ctx, func(state ipc.StateData) error {
		if state.Workspaces == nil {
			state.Workspaces = []workspaces.Workspace{}
		}
		return enc.Encode(state)
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
