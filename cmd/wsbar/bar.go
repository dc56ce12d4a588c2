package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/wsbar/internal/ipc"
	"github.com/1broseidon/wsbar/internal/palette"
	"github.com/1broseidon/wsbar/internal/tui"
)

func runBar(args []string) int {
	fs := flag.NewFlagSet("bar", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wsbar/config.yaml)")
	monitor := fs.String("monitor", "", "Output this bar belongs to (default: show every workspace)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar bar [--path PATH] [--monitor NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the workspace bar in this terminal. Requires a running daemon.")
		fmt.Fprintln(os.Stderr, "workspaces.visibility_mode decides which workspaces --monitor shows.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Mouse: click a workspace to switch, wheel to scroll.")
		fmt.Fprintln(os.Stderr, "Keys:  h/l or ←/→ scroll, 1-9 switch, s toggle special, ? help, q quit")
		fs.PrintDefaults()
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	known := make([]string, 0, len(status.Monitors))
	for _, m := range status.Monitors {
		known = append(known, m.Name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tui.RunBar(ctx, client, tui.BarOptions{
		Monitor: *monitor,
		Known:   known,
		Config:  res.Config.Workspaces,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	menu := fs.String("menu", "", "Use a launcher instead of the terminal: auto, rofi, fuzzel, wofi, dmenu")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsbar pick [--menu NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Choose a workspace from a list and switch to it.")
		fs.PrintDefaults()
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	client := ipc.NewClient()
	if *menu != "" {
		backend, err := palette.NewBackend(*menu)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := tui.PickMenu(client, backend); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if err := tui.Pick(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
