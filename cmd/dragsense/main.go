package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/1broseidon/dragsense/internal/config"
	"github.com/1broseidon/dragsense/internal/daemon"
	"github.com/1broseidon/dragsense/internal/event"
	"github.com/1broseidon/dragsense/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: dragsense daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: dragsense daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "simulate":
		os.Exit(runSimulate(os.Args[2:]))
	case "color":
		os.Exit(runColor(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: dragsense <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the dragsense daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  monitors            List attached displays")
	fmt.Fprintln(w, "  simulate            Inject a synthetic file drag")
	fmt.Fprintln(w, "  color               Sample a screen pixel color")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'dragsense <command> --help' for command-specific options.")
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	layout, err := cfg.GridLayout()
	if err != nil {
		log.Fatalf("Invalid layout configuration: %v", err)
	}
	log.Printf("Configuration loaded (layout: %s, buttons: %v)", layout.Name, cfg.ArmButtons)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	})))

	svc := daemon.NewService(daemon.Options{
		Layout:    layout,
		Buttons:   cfg.ArmButtons,
		QueueSize: cfg.QueueSize,
	})
	defer svc.Close()

	if err := svc.ConfigureDragMonitor(cfg.HelperPath); err != nil {
		log.Fatalf("Failed to configure drag monitor: %v", err)
	}

	if err := svc.StartPointerMonitor(); err != nil {
		log.Fatalf("Failed to start pointer monitor: %v", err)
	}
	if err := svc.StartDragMonitor(); err != nil {
		log.Fatalf("Failed to start drag monitor: %v", err)
	}
	if cfg.KeyboardMonitor {
		if err := svc.StartKeyboardMonitor(); err != nil {
			log.Fatalf("Failed to start keyboard monitor: %v", err)
		}
	}
	watchEvents(svc)
	log.Println("dragsense daemon started successfully")

	// Start IPC server
	ipcServer, err := ipc.NewServer(svc)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down dragsense daemon...")
	ipcServer.Stop()
}

func slogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dragsense status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:      %v\n", status.DaemonRunning)
	fmt.Printf("pointer_monitoring:  %v\n", status.PointerMonitoring)
	fmt.Printf("keyboard_monitoring: %v\n", status.KeyboardMonitoring)
	fmt.Printf("drag_monitoring:     %v\n", status.DragMonitoring)
	fmt.Printf("layout:              %s\n", status.Layout)
	if status.HelperPath != "" {
		fmt.Printf("helper_path:         %s\n", status.HelperPath)
	}
	fmt.Printf("uptime_seconds:      %d\n", status.UptimeSeconds)
	fmt.Printf("episodes_opened:     %d\n", status.EpisodesOpened)
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dragsense monitors")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List attached displays via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "monitors takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, m := range data.Monitors {
		fmt.Printf("%d: %s %dx%d+%d+%d scale=%.2f\n",
			m.ID, m.Name, m.Width, m.Height, m.X, m.Y, m.Scale)
	}
	return 0
}

func runSimulate(args []string) int {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dragsense simulate <file> [file ...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Emit a synthetic hovered+dropped sequence for each file path.")
		fmt.Fprintln(os.Stderr, "Paths must name existing files.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "simulate requires at least one file path")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.SimulateDrag(fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("simulated drag of %d file(s)\n", fs.NArg())
	return 0
}

func runColor(args []string) int {
	fs := flag.NewFlagSet("color", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dragsense color <x> <y>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Sample the screen pixel at logical coordinates x,y.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "color requires exactly two arguments")
		fs.Usage()
		return 2
	}

	x, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid x coordinate: %s\n", fs.Arg(0))
		return 2
	}
	y, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid y coordinate: %s\n", fs.Arg(1))
		return 2
	}

	client := ipc.NewClient()
	data, err := client.SampleColor(x, y)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s rgba(%d, %d, %d, %d)\n", data.Hex, data.R, data.G, data.B, data.A)
	return 0
}

// watchEvents subscribes to the service buses and logs events. Used by the
// daemon to surface activity at debug level.
func watchEvents(svc *daemon.Service) {
	svc.OnPointerEvent(func(ev event.PointerEvent) {
		slog.Debug("pointer event", "type", ev.EventType, "x", ev.X, "y", ev.Y)
	})
	svc.OnKeyboardEvent(func(ev event.KeyboardEvent) {
		slog.Debug("keyboard event", "type", ev.EventType, "key", ev.KeyName, "modifiers", ev.Modifiers)
	})
	svc.OnDragEvent(func(ev event.DragEvent) {
		slog.Info("drag event", "type", ev.EventType, "path", ev.FilePath, "window", ev.WindowID)
	})
}
