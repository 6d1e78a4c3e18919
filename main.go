package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"datachat-cli/internal/api"
	"datachat-cli/internal/config"
	"datachat-cli/internal/display"
	"datachat-cli/internal/logger"
	"datachat-cli/internal/service"
	"datachat-cli/internal/session"
	"datachat-cli/internal/tui"
	"datachat-cli/internal/view"
	"datachat-cli/internal/web"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	activeProfile string
	jsonOutput    bool
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("failure already reported")

func main() {
	// A missing .env is fine; DATACHAT_* variables may come from anywhere.
	_ = godotenv.Load()

	args := os.Args[1:]

	// Parse global flags first (--profile, --json)
	args = parseGlobalFlags(args)

	interactive := len(args) == 0 || args[0] == "-i" || args[0] == "--interactive" || args[0] == "interactive"

	closeLog := initLogging(interactive)
	defer closeLog()

	if interactive {
		if err := tui.Run(version, activeProfile); err != nil {
			display.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	var err error

	switch args[0] {
	case "ask":
		err = cmdAsk(args[1:])
	case "web", "serve":
		err = cmdWeb(args[1:])
	case "set":
		err = cmdSet(args[1:])
	case "config":
		err = cmdConfig()
	case "profiles":
		err = cmdProfiles()
	case "agents":
		err = cmdAgents()
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Println(versionString())
	default:
		display.Error(fmt.Sprintf("Unknown command: %s", args[0]))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errReported) {
			display.Error(err.Error())
		}
		os.Exit(1)
	}
}

// initLogging applies the profile's log settings. The interactive mode logs
// to a file so the terminal stays clean.
func initLogging(interactive bool) func() {
	level, format := config.DefaultLogLevel, config.DefaultLogFormat
	if cfg, err := config.Load(activeProfile); err == nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}

	if !interactive {
		logger.Init(level, format, os.Stderr)
		return func() {}
	}

	path, err := config.LogPath()
	if err != nil {
		logger.Init(level, format, io.Discard)
		return func() {}
	}
	f, err := logger.OpenFile(path)
	if err != nil {
		logger.Init(level, format, io.Discard)
		return func() {}
	}
	logger.Init(level, format, f)
	return func() { f.Close() }
}

// ─── ask ────────────────────────────────────────────────────────────────────

type askOptions struct {
	question string
	agent    string
	raw      bool
	maxRows  int
	timeout  time.Duration
}

func parseAskArgs(args []string) (askOptions, error) {
	var opts askOptions
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-a", "--agent":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--agent requires a value")
			}
			i++
			if !api.ValidAgent(args[i]) {
				return opts, fmt.Errorf("unknown agent %q (run: datachat agents)", args[i])
			}
			opts.agent = strings.ToLower(args[i])
		case "--raw":
			opts.raw = true
		case "-n", "--max-rows":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--max-rows requires a value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return opts, fmt.Errorf("invalid --max-rows value: %s", args[i])
			}
			opts.maxRows = n
		case "--timeout":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--timeout requires a value")
			}
			i++
			secs, err := strconv.Atoi(args[i])
			if err != nil || secs <= 0 {
				return opts, fmt.Errorf("invalid --timeout value: %s", args[i])
			}
			opts.timeout = time.Duration(secs) * time.Second
		default:
			positional = append(positional, args[i])
		}
	}

	opts.question = strings.Join(positional, " ")
	return opts, nil
}

func cmdAsk(args []string) error {
	opts, err := parseAskArgs(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(opts.question) == "" {
		fmt.Println(`Usage: datachat ask "<question>" [-a <agent>] [--raw] [-n <max-rows>] [--timeout <seconds>]`)
		return nil
	}

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := api.NewClient(cfg)
	if opts.timeout > 0 {
		client.SetTimeout(opts.timeout)
	}
	agent := opts.agent
	if agent == "" {
		agent = cfg.Agent
	}
	maxRows := cfg.MaxRows
	if opts.maxRows > 0 {
		maxRows = opts.maxRows
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, req, err := session.Ask(session.New(maxRows), opts.question, agent)
	if err != nil {
		return err
	}

	showSpinner := !jsonOutput && isTerminal()
	if showSpinner {
		display.Spinner(fmt.Sprintf("Asking %s ...", display.AgentLabel(agent)))
	}
	start := time.Now()
	resp, raw, err := client.Chat(ctx, req)
	if showSpinner {
		display.ClearLine()
	}
	st = session.Complete(st, st.Seq, resp, raw, err)

	if jsonOutput {
		if err := printJSON(resultJSON(st)); err != nil {
			return err
		}
		if st.Outcome == session.OutcomeFailed {
			return errReported
		}
		return nil
	}
	if opts.raw {
		st = session.SelectTab(st, session.TabRaw)
	}

	if st.Outcome == session.OutcomeFailed {
		if st.Raw != "" && opts.raw {
			fmt.Println(view.Raw(st))
		}
		return fmt.Errorf("%s: %w", display.KindLabel(session.ErrorLabel(st.Err)), st.Err)
	}

	fmt.Println()
	fmt.Println(view.Active(st, terminalWidth()))
	fmt.Println()
	display.Info("Agent:", display.AgentLabel(agentOrRequested(st)))
	display.Info("Time:", display.Duration(time.Since(start)))
	return nil
}

func agentOrRequested(st session.State) string {
	if st.Result.Agent != "" {
		return st.Result.Agent
	}
	return st.Agent
}

func resultJSON(st session.State) map[string]any {
	if st.Outcome == session.OutcomeFailed {
		return map[string]any{
			"error": map[string]string{
				"kind":    session.ErrorLabel(st.Err),
				"message": st.Err.Error(),
			},
		}
	}
	tbl := st.Table(service.PlainCell)
	res := st.Result
	return map[string]any{
		"answer_text": res.AnswerText,
		"sql":         res.SQL,
		"columns":     res.Columns,
		"rows":        tbl.Body,
		"row_count":   tbl.RowCount,
		"truncated":   tbl.Truncated,
		"notes":       res.Notes,
		"agent":       res.Agent,
		"mode":        res.Mode,
		"source":      res.Source.String(),
	}
}

// ─── web ────────────────────────────────────────────────────────────────────

func cmdWeb(args []string) error {
	addr := "127.0.0.1:8080"
	var origins []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--addr", "-l":
			if i+1 >= len(args) {
				return fmt.Errorf("--addr requires a value")
			}
			i++
			addr = args[i]
		case "--allow-origin":
			if i+1 >= len(args) {
				return fmt.Errorf("--allow-origin requires a value")
			}
			i++
			origins = append(origins, args[i])
		default:
			return fmt.Errorf("unknown flag for web: %s", args[i])
		}
	}

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	srv := web.NewServer(api.NewClient(cfg), web.Options{
		MaxRows:      cfg.MaxRows,
		Agent:        cfg.Agent,
		AllowOrigins: origins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display.Success(fmt.Sprintf("Serving http://%s (backend %s)", addr, cfg.Server))
	return srv.Run(ctx, addr)
}

// ─── set ────────────────────────────────────────────────────────────────────

func cmdSet(args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: datachat set <key> <value>")
		fmt.Println()
		fmt.Println("Keys:")
		fmt.Println("  server      Chat backend URL  (e.g. http://localhost:8000)")
		fmt.Println("  agent       Default agent (run: datachat agents)")
		fmt.Println("  timeout     Request timeout in seconds")
		fmt.Println("  max-rows    Table rows shown before truncating")
		fmt.Println("  log-level   debug, info, warn or error")
		fmt.Println("  log-format  text or json")
		return nil
	}

	cfg, err := config.LoadFile(activeProfile)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := applySetting(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	display.Success(fmt.Sprintf("%s set to %s", key, value))
	return nil
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "server":
		cfg.Server = strings.TrimRight(value, "/")
	case "agent":
		if !api.ValidAgent(value) {
			return fmt.Errorf("unknown agent %q (run: datachat agents)", value)
		}
		cfg.Agent = strings.ToLower(value)
	case "timeout", "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout must be a positive number of seconds")
		}
		cfg.TimeoutSeconds = n
	case "max-rows", "max_rows":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("max-rows must be a positive number")
		}
		cfg.MaxRows = n
	case "log-level", "log_level":
		switch value {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = value
		default:
			return fmt.Errorf("log-level must be debug, info, warn or error")
		}
	case "log-format", "log_format":
		if value != "text" && value != "json" {
			return fmt.Errorf("log-format must be text or json")
		}
		cfg.LogFormat = value
	default:
		return fmt.Errorf("unknown config key: %s (valid: server, agent, timeout, max-rows, log-level, log-format)", key)
	}
	return nil
}

// ─── config ─────────────────────────────────────────────────────────────────

func cmdConfig() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cfg)
	}

	display.Header("datachat Configuration")

	display.Info("Profile:", config.ProfileName(activeProfile))
	fmt.Println()

	display.SubHeader("Backend")
	display.Info("Server:", cfg.Server)
	display.Info("Agent:", display.AgentLabel(cfg.Agent))
	display.Info("Timeout:", fmt.Sprintf("%ds", cfg.TimeoutSeconds))
	display.Info("Max rows:", strconv.Itoa(cfg.MaxRows))
	fmt.Println()

	display.SubHeader("Logging")
	display.Info("Log level:", cfg.LogLevel)
	display.Info("Log format:", cfg.LogFormat)
	if path, err := config.LogPath(); err == nil {
		display.Info("Log file:", path+display.Dim+" (interactive mode)"+display.Reset)
	}
	if err := cfg.Validate(); err != nil {
		display.Warn(err.Error())
	}
	fmt.Println()

	return nil
}

// ─── profiles ───────────────────────────────────────────────────────────────

func cmdProfiles() error {
	profiles, err := config.ListProfiles()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(profiles)
	}

	display.Header(fmt.Sprintf("Profiles (%d)", len(profiles)))

	if len(profiles) == 0 {
		display.Warn("No profiles found.")
		return nil
	}

	for _, p := range profiles {
		marker := " "
		if p == config.ProfileName(activeProfile) {
			marker = display.Green + "●" + display.Reset
		}
		fmt.Printf("  %s %s\n", marker, p)
	}
	fmt.Println()

	return nil
}

// ─── agents ─────────────────────────────────────────────────────────────────

func cmdAgents() error {
	if jsonOutput {
		return printJSON(api.Agents)
	}

	display.Header("Agents")
	for _, a := range api.Agents {
		display.Info(a.Key, a.Desc)
	}
	fmt.Println()
	return nil
}

// ─── helpers ────────────────────────────────────────────────────────────────

func parseGlobalFlags(args []string) []string {
	var remaining []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--profile":
			if i+1 < len(args) {
				i++
				activeProfile = args[i]
			}
			continue
		case "-j", "--json":
			jsonOutput = true
			continue
		}
		remaining = append(remaining, args[i])
	}
	return remaining
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func versionString() string {
	if commit == "none" {
		return "datachat " + version
	}
	return fmt.Sprintf("datachat %s\n  commit: %s\n  built:  %s", version, commit, date)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 100
	}
	return w
}

// ─── usage ──────────────────────────────────────────────────────────────────

func printUsage() {
	fmt.Printf(`%sdatachat%s · ask your data in plain language (%s)

%sUsage:%s
  datachat                                            Launch interactive mode (default)
  datachat [--profile <name>] [-j] <command> [args]   Run a specific command

%sAsking:%s
  ask "<question>"          Ask one question and print the answer
    -a, --agent <key>       Force an agent (default from config, "auto" lets the backend route)
    --raw                   Print the raw response instead of the structured view
    -n, --max-rows <n>      Show at most n table rows (default 200)
    --timeout <seconds>     Request timeout (default 30)
  agents                    List available agents

%sWeb UI:%s
  web                       Serve a local page in front of the backend
    --addr <host:port>      Listen address (default 127.0.0.1:8080)
    --allow-origin <url>    Allow cross-origin calls to /api/ask (repeatable)

%sSettings:%s
  set server <url>          Chat backend URL
  set agent <key>           Default agent
  set timeout <seconds>     Request timeout
  set max-rows <n>          Table rows shown before truncating
  set log-level <level>     debug, info, warn, error
  set log-format <format>   text, json
  config                    Show current configuration

%sProfiles:%s
  profiles                  List all config profiles
  --profile <name>          Use a named config profile (default: unnamed)

Environment variables DATACHAT_SERVER, DATACHAT_AGENT, DATACHAT_TIMEOUT_SECONDS,
DATACHAT_MAX_ROWS, DATACHAT_LOG_LEVEL and DATACHAT_LOG_FORMAT override the
config file. A .env file in the working directory is loaded first.

%sExamples:%s
  datachat                                     # Start interactive mode
  datachat set server http://localhost:8000
  datachat ask "Revenue by month for 2024" -a text2sql
  datachat -j ask "How many active customers?"
  datachat --profile staging web --addr :9090

`, display.Bold, display.Reset, version,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset)
}
