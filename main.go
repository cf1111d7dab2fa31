package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/readless/internal/applog"
	"github.com/lotas/readless/internal/browser"
	"github.com/lotas/readless/internal/config"
	"github.com/lotas/readless/internal/export"
	"github.com/lotas/readless/internal/firefox"
	"github.com/lotas/readless/internal/llm"
	"github.com/lotas/readless/internal/page"
	"github.com/lotas/readless/internal/panel"
	"github.com/lotas/readless/internal/processor"
	"github.com/lotas/readless/internal/readless"
	"github.com/lotas/readless/internal/render"
	"github.com/lotas/readless/internal/server"
	"github.com/lotas/readless/internal/storage"
	"github.com/lotas/readless/internal/tui"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "summarize":
			runSummarize(os.Args[2:])
			return
		case "page":
			runPage(os.Args[2:])
			return
		case "notes":
			runNotes(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}
	runPanel(os.Args[1:])
}

func printHelp() {
	fmt.Print(`readless — summarize what you are reading

Usage:
  readless                                   Start the panel (default)
    --source <name>        Selection source: extension, cdp, primary (default: extension)
    --endpoint <url>       Processing endpoint (default: ` + config.DefaultEndpoint + `)
    --port <n>             WebSocket port for the browser extension (default: 19191)
    --cdp-url <url>        DevTools websocket URL for --source cdp
    --db <path>            Notes database (default: ~/.local/share/readless/readless.db)
    --ephemeral            Keep notes in memory only

  readless summarize                         Summarize the current selection once and print it
    (accepts the panel flags above)
    --wait <dur>           How long to wait for the extension to connect (default: 10s)

  readless page [<url>]                      Fetch a page and process its article text
    --active               Use the active tab of the Firefox session instead of <url>
    --profile <name>       Firefox profile name for --active
    --op <name>            Operation (default: summarize)
    --endpoint <url>       Processing endpoint
    --raw                  Print the extracted article without processing

  readless serve                             Run the processing endpoint
    --addr <host:port>     Listen address (default: 127.0.0.1:8080)
    --backend <name>       gemini, ollama or openai (default: gemini)
    --model <name>         Model for ollama/openai
    --quiet                Disable the request log on stderr

  readless notes get                         Print the saved note
  readless notes set [text]                  Replace the saved note (reads stdin without text)
  readless notes export [--json] [--out f]   Export the note as markdown or JSON

Operations:
  ` + strings.Join(readless.Operations, ", ") + `, translate:<language>

Environment:
  READLESS_CONFIG        Config file (default: ~/.config/readless/config.yaml)
  READLESS_ENDPOINT      Processing endpoint
  READLESS_SOURCE        Selection source
  READLESS_BRIDGE_PORT   Extension WebSocket port
  READLESS_CDP_URL       DevTools websocket URL
  READLESS_DB            Notes database path
  READLESS_LOG_DIR       Log directory
  READLESS_PROFILE       Default Firefox profile (overridden by --profile)
  READLESS_ADDR          serve listen address
  READLESS_BACKEND       serve backend
  GEMINI_API_KEY         Gemini API key (GEMINI_API_URL overrides the model URL)
  OLLAMA_HOST            Ollama server URL (default: http://localhost:11434)
  READLESS_MODEL         Ollama model (default: llama3.2)
  OPENAI_API_KEY         OpenAI API key (OPENAI_BASE_URL, OPENAI_MODEL)
`)
}

// loadConfig reads the config file and environment and starts the log.
func loadConfig() config.Config {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applog.Init(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	return cfg
}

// panelFlags registers the flags shared by the panel and summarize.
type panelFlags struct {
	source    *string
	endpoint  *string
	port      *int
	cdpURL    *string
	db        *string
	ephemeral *bool
}

func addPanelFlags(fs *flag.FlagSet, cfg config.Config) panelFlags {
	return panelFlags{
		source:    fs.String("source", cfg.Source, "Selection source: extension, cdp, primary"),
		endpoint:  fs.String("endpoint", cfg.Endpoint, "Processing endpoint URL"),
		port:      fs.Int("port", cfg.BridgePort, "WebSocket port for the browser extension"),
		cdpURL:    fs.String("cdp-url", cfg.CDPURL, "DevTools websocket URL for --source cdp"),
		db:        fs.String("db", cfg.DBPath, "Notes database path"),
		ephemeral: fs.Bool("ephemeral", false, "Keep notes in memory only"),
	}
}

func (f panelFlags) apply(cfg *config.Config) error {
	cfg.Source = *f.source
	cfg.Endpoint = *f.endpoint
	cfg.BridgePort = *f.port
	cfg.CDPURL = *f.cdpURL
	cfg.DBPath = *f.db
	return cfg.Validate()
}

// openStore returns the notes store and a func to release it.
func openStore(cfg config.Config, ephemeral bool) (panel.Store, func(), error) {
	if ephemeral {
		return storage.NewMemStore(), func() {}, nil
	}
	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return storage.NewKV(db), func() { db.Close() }, nil
}

// selectionSource builds the configured source. For the extension source
// the bridge is started on ctx and returned too; other sources return a
// nil bridge.
func selectionSource(ctx context.Context, cfg config.Config) (panel.Source, *server.Server) {
	switch cfg.Source {
	case config.SourceCDP:
		return browser.NewCDPSource(cfg.CDPURL), nil
	case config.SourcePrimary:
		return browser.NewPrimarySource(), nil
	default:
		srv := server.New(cfg.BridgePort)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				applog.Error("bridge.listen", err, "port", cfg.BridgePort)
			}
		}()
		return browser.NewExtensionSource(srv), srv
	}
}

func runPanel(args []string) {
	cfg := loadConfig()
	defer applog.Close()

	fs := flag.NewFlagSet("readless", flag.ExitOnError)
	pf := addPanelFlags(fs, cfg)
	fs.Parse(args)
	if err := pf.apply(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(cfg, *pf.ephemeral)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source, bridge := selectionSource(ctx, cfg)

	opts := tui.Options{Source: cfg.Source, Endpoint: cfg.Endpoint}
	if bridge != nil {
		opts.Connected = bridge.Connected
		opts.Events = bridge.Messages()
	}
	model := tui.NewModel(store, source, readless.New(cfg.Endpoint), opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	applog.Info("panel.start", "source", cfg.Source, "endpoint", cfg.Endpoint)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printView is a panel.View that writes results to a terminal.
type printView struct {
	out io.Writer
}

func (v printView) SetNote(string) {}
func (v printView) Note() string   { return "" }

func (v printView) ShowResult(markup string) {
	text, err := render.Terminal(markup)
	if err != nil {
		text = markup
	}
	fmt.Fprintln(v.out, text)
}

func (v printView) Confirm(msg string) {
	fmt.Fprintln(v.out, msg)
}

func runSummarize(args []string) {
	cfg := loadConfig()
	defer applog.Close()

	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	pf := addPanelFlags(fs, cfg)
	wait := fs.Duration("wait", 10*time.Second, "How long to wait for the extension to connect")
	fs.Parse(args)
	if err := pf.apply(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source, bridge := selectionSource(ctx, cfg)
	if bridge != nil {
		fmt.Fprintf(os.Stderr, "Waiting for browser extension on port %d...\n", cfg.BridgePort)
		if err := waitConnected(ctx, bridge.Connected, *wait); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	ctrl := panel.New(storage.NewMemStore(), source, readless.New(cfg.Endpoint), printView{out: os.Stdout})
	if err := ctrl.Summarize(ctx); err != nil {
		os.Exit(1)
	}
}

func waitConnected(ctx context.Context, connected func() bool, timeout time.Duration) error {
	deadline := time.After(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for !connected() {
		select {
		case <-ticker.C:
		case <-deadline:
			return fmt.Errorf("timed out waiting for extension (%s)", timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func runPage(args []string) {
	cfg := loadConfig()
	defer applog.Close()

	fs := flag.NewFlagSet("page", flag.ExitOnError)
	active := fs.Bool("active", false, "Use the active tab of the Firefox session")
	profileName := fs.String("profile", "", "Firefox profile name for --active")
	op := fs.String("op", readless.OpSummarize, "Operation")
	endpoint := fs.String("endpoint", cfg.Endpoint, "Processing endpoint URL")
	raw := fs.Bool("raw", false, "Print the extracted article without processing")
	fs.Parse(reorderArgs(args))

	var url string
	switch {
	case *active:
		profile, err := firefox.ResolveProfile(resolveProfileName(*profileName))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		tab, err := firefox.ReadActiveTab(profile.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Active tab: %s\n", tab.Label())
		url = tab.URL
	case fs.NArg() == 1:
		url = fs.Arg(0)
	default:
		fmt.Fprintln(os.Stderr, "Usage: readless page <url> | readless page --active")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	article, err := page.FetchReadable(ctx, url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applog.Info("page.fetch", "url", url, "chars", len(article.Text))

	if *raw {
		fmt.Println(article.Content())
		return
	}

	operation := readless.NormalizeOperation(*op)
	if !readless.KnownOperation(operation) {
		fmt.Fprintf(os.Stderr, "Warning: unknown operation %q, the endpoint will summarize\n", operation)
	}

	out, err := readless.New(*endpoint).Process(ctx, article.Content(), operation)
	if err != nil {
		applog.Error("page.process", err, "url", url, "op", operation)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	text, err := render.Terminal(render.Fragment(render.Text(out)))
	if err != nil {
		text = out
	}
	if article.Title != "" {
		fmt.Printf("# %s\n\n", article.Title)
	}
	fmt.Println(text)
}

func runServe(args []string) {
	cfg := loadConfig()
	defer applog.Close()

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Serve.Addr, "Listen address")
	backend := fs.String("backend", cfg.Serve.Backend, "gemini, ollama or openai")
	model := fs.String("model", "", "Model for ollama/openai")
	quiet := fs.Bool("quiet", false, "Disable the request log on stderr")
	fs.Parse(args)

	cfg.Serve.Backend = *backend
	if *model != "" {
		cfg.Serve.Ollama.Model = *model
		cfg.Serve.OpenAI.Model = *model
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	gen := newGenerator(cfg.Serve)
	svc := processor.New(gen)
	svc.LogRequests = !*quiet

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Serving %s backend on http://%s\n", cfg.Serve.Backend, *addr)
	if err := svc.ListenAndServe(ctx, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newGenerator(sc config.ServeConfig) llm.Generator {
	switch sc.Backend {
	case config.BackendOllama:
		return llm.NewOllama(sc.Ollama.Host, sc.Ollama.Model)
	case config.BackendOpenAI:
		return llm.NewOpenAI(sc.OpenAI.BaseURL, sc.OpenAI.APIKey, sc.OpenAI.Model)
	default:
		if sc.Gemini.APIKey == "" {
			fmt.Fprintln(os.Stderr, "Warning: GEMINI_API_KEY is not set; requests will fail")
		}
		return llm.NewGemini(sc.Gemini.URL, sc.Gemini.APIKey)
	}
}

func runNotes(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: readless notes get|set|export")
		os.Exit(1)
	}

	cfg := loadConfig()
	defer applog.Close()

	fs := flag.NewFlagSet("notes", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "Notes database path")
	jsonFlag := fs.Bool("json", false, "Export as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	fs.Parse(reorderArgs(args[1:]))

	db, err := storage.OpenDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	kv := storage.NewKV(db)
	ctx := context.Background()

	switch args[0] {
	case "get":
		note, _, err := kv.Get(ctx, panel.NotesKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(note)
		if note != "" && !strings.HasSuffix(note, "\n") {
			fmt.Println()
		}

	case "set":
		text := strings.Join(fs.Args(), " ")
		if fs.NArg() == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
				os.Exit(1)
			}
			text = string(data)
		}
		if err := kv.Set(ctx, panel.NotesKey, text); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		applog.Info("notes.set", "chars", len(text))
		fmt.Fprintln(os.Stderr, panel.SavedMessage)

	case "export":
		note, err := kv.Note(ctx, panel.NotesKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		var output string
		if *jsonFlag {
			output, err = export.JSON(note)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
				os.Exit(1)
			}
		} else {
			output = export.Markdown(note)
		}
		if *outFile != "" {
			if err := os.WriteFile(*outFile, []byte(output), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Print(output)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown notes command %q. Use get, set, or export.\n", args[0])
		os.Exit(1)
	}
}

// reorderArgs moves flag arguments before positional arguments so that
// flag.Parse handles them correctly (it stops at the first non-flag arg).
// Boolean flags must use the -flag form and never take a separate value.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			if takesValue(args[i]) && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

var boolFlags = map[string]bool{"active": true, "raw": true, "json": true}

func takesValue(arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if strings.Contains(name, "=") {
		return false
	}
	return !boolFlags[name]
}

// resolveProfileName returns the profile name from the flag if set,
// otherwise falls back to the READLESS_PROFILE environment variable.
func resolveProfileName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("READLESS_PROFILE")
}
