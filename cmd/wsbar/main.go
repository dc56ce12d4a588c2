package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/wsbar/internal/daemon"
	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/metrics"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "workspaces":
		os.Exit(runWorkspaces(os.Args[2:]))
	case "switch":
		os.Exit(runSwitch(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "scroll":
		os.Exit(runScroll(os.Args[2:]))
	case "title":
		os.Exit(runTitle(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "bar":
		os.Exit(runBar(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wsbar <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the wsbar daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  workspaces          List workspaces")
	fmt.Fprintln(w, "  switch <id>         Switch to a workspace")
	fmt.Fprintln(w, "  toggle <id>         Toggle a special workspace")
	fmt.Fprintln(w, "  scroll <+1|-1>      Move to the next or previous workspace")
	fmt.Fprintln(w, "  title               Print the focused window title")
	fmt.Fprintln(w, "  watch               Stream workspace state as JSON lines")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  bar                 Show the workspace bar in this terminal")
	fmt.Fprintln(w, "  pick                Pick a workspace interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wsbar <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set that takes no positional arguments.
// It returns -1 on success or the exit code to use.
func parseNoArgs(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2
	}
	return -1
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wsbar/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/wsbar.sock)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar daemon [--path PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Track workspaces of the running window manager and serve them over IPC.")
		fmt.Fprintln(os.Stderr, "Send SIGHUP or run 'wsbar reload' to re-read the configuration.")
		fs.PrintDefaults()
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	client := ipc.NewClient()
	if *socket != "" {
		client = ipc.NewClientWithSocket(*socket)
	}
	if err := client.Ping(); err == nil {
		fmt.Fprintln(os.Stderr, "wsbar daemon is already running")
		return 1
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	d, err := daemon.New(daemon.Options{
		ConfigPath: *path,
		SocketPath: *socket,
		Logger:     logger,
		LogLevel:   level,
		Metrics:    metrics.New(),
	})
	if err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		log.Fatalf("Daemon error: %v", err)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("backend:        %s\n", status.Backend)
	if status.ConfigFile != "" {
		fmt.Printf("config_file:    %s\n", status.ConfigFile)
	}
	fmt.Printf("workspaces:     %d\n", status.Workspaces)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	for _, m := range status.Monitors {
		focus := ""
		if m.Focused {
			focus = " (focused)"
		}
		fmt.Printf("monitor:        %d %s%s\n", m.ID, m.Name, focus)
	}
	fmt.Printf("subscriptions:  %s\n", strings.Join(status.Subscriptions, ", "))
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to reload its configuration.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}
