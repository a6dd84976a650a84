// Command shockview is a TUI console for road-network shock scenarios:
// parametrize a run, submit it to the simulation service, and inspect
// the result as metrics plus before/after renderings of the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/oisheenandy0505/urban-mobility/pkg/mapimg"
	"github.com/oisheenandy0505/urban-mobility/pkg/resilience"
	"github.com/oisheenandy0505/urban-mobility/pkg/session"
	"github.com/oisheenandy0505/urban-mobility/pkg/view"
)

// Config holds persistent console settings
type Config struct {
	Endpoint  string // simulation service base address
	LastCity  string // last submitted city
	ExportDir string // where PNG snapshots land
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	return Config{
		Endpoint:  "http://localhost:8000",
		LastCity:  "",
		ExportDir: cwd,
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shockview"
	}
	return filepath.Join(home, ".shockview")
}

// LoadConfig loads configuration from the dotfile
func LoadConfig() Config {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return DefaultConfig()
	}
	return parseConfig(string(data))
}

// parseConfig applies recognized keys over the defaults
func parseConfig(data string) Config {
	cfg := DefaultConfig()
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		if val == "" {
			continue
		}
		switch key {
		case "endpoint":
			cfg.Endpoint = val
		case "last_city":
			cfg.LastCity = val
		case "export_dir":
			cfg.ExportDir = val
		}
	}
	return cfg
}

// SaveConfig saves configuration to the dotfile
func SaveConfig(cfg Config) error {
	content := fmt.Sprintf("# shockview configuration\nendpoint = \"%s\"\nlast_city = \"%s\"\nexport_dir = \"%s\"\n",
		cfg.Endpoint, cfg.LastCity, cfg.ExportDir)
	return os.WriteFile(ConfigPath(), []byte(content), 0644)
}

// Mode represents the console mode
type Mode int

const (
	ModeForm Mode = iota
	ModeCityPick
	ModeHelp
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

// Form field focus order
const (
	fieldCity = iota
	fieldScenario
	fieldSeverity
	fieldPairs
	fieldFlood
	fieldSubmit
	fieldCount
)

// Severity and sample-size steps for the arrow-key controls.
const (
	severityStep = 0.01
	pairsStep    = 10
)

// App holds all console state
type App struct {
	screen  tcell.Screen
	client  *resilience.Client
	tracker *session.Tracker
	config  Config

	mode  Mode
	focus int

	// Form state
	city        string
	scenarioIdx int
	severity    float64
	nPairs      int
	useFlood    bool

	// Fetched once at startup. Written only by applyCatalog on the
	// event-loop goroutine; the fetch itself delivers its outcome as
	// an interrupt payload.
	catalog        []string
	cities         []string
	catalogLoaded  bool
	catalogFailure string

	// City picker state
	cityPickIdx int

	// Status message. The string and type are event-loop-only; the
	// flash timestamp is also read by the ticker goroutine.
	message     string
	messageType MessageType
	flashStart  atomic.Int64 // Unix milliseconds
}

// catalogLoad is the outcome of the startup catalog fetch. It crosses
// into the event loop as the interrupt event payload, so the fetching
// goroutine never touches App state directly.
type catalogLoad struct {
	scenarios []string
	cities    []string
	failure   string
}

func main() {
	endpointFlag := flag.String("endpoint", "", "simulation service base address")
	flag.Parse()

	cfg := LoadConfig()
	if env := os.Getenv("SHOCKVIEW_ENDPOINT"); env != "" {
		cfg.Endpoint = env
	}
	if *endpointFlag != "" {
		cfg.Endpoint = *endpointFlag
	}

	app := &App{
		config:   cfg,
		client:   resilience.NewClient(cfg.Endpoint),
		city:     cfg.LastCity,
		severity: 0.05,
		nPairs:   40,
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.Clear()
	app.screen = screen

	app.tracker = session.NewTracker(app.client, func() {
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	})

	go app.loadCatalog()

	app.run()

	app.config.LastCity = app.city
	SaveConfig(app.config)
	screen.Fini()
}

// loadCatalog fetches the scenario catalog and city suggestions once at
// startup and posts the outcome to the event loop.
func (app *App) loadCatalog() {
	app.screen.PostEvent(tcell.NewEventInterrupt(fetchCatalog(app.client)))
}

// fetchCatalog queries the service for the catalog. It works on local
// state only, so it is safe from any goroutine.
func fetchCatalog(client *resilience.Client) *catalogLoad {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	load := &catalogLoad{}
	if err := client.Health(ctx); err != nil {
		load.failure = fmt.Sprintf("service not reachable at %s", client.BaseURL())
		return load
	}
	scenarios, err := client.Scenarios(ctx)
	if err != nil || len(scenarios) == 0 {
		load.failure = "no scenarios available"
	} else {
		load.scenarios = scenarios
	}
	if cities, err := client.Cities(ctx); err == nil {
		load.cities = cities
	}
	return load
}

// applyCatalog installs a fetch outcome. Called from the event loop
// only; nothing else writes the catalog fields.
func (app *App) applyCatalog(load *catalogLoad) {
	app.catalog = load.scenarios
	app.cities = load.cities
	app.catalogFailure = load.failure
	app.catalogLoaded = true
	if len(app.catalog) > 0 {
		app.scenarioIdx = 0 // first entry is the default selection
	}
}

func (app *App) run() {
	// Periodic refresh while a message flash is active
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			start := app.flashStart.Load()
			if start > 0 && time.Now().UnixMilli()-start < 700 {
				app.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	for {
		app.draw()
		app.screen.Show()

		ev := app.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			app.screen.Sync()
		case *tcell.EventKey:
			if app.handleKey(ev) {
				return
			}
		case *tcell.EventInterrupt:
			// Catalog outcomes carry a payload; bare interrupts are
			// redraw wake-ups from the tracker or the flash ticker.
			if load, ok := ev.Data().(*catalogLoad); ok {
				app.applyCatalog(load)
			}
		}
	}
}

func (app *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}

	switch app.mode {
	case ModeCityPick:
		app.handleCityPickKey(ev)
	case ModeHelp:
		if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
			app.mode = ModeForm
		}
	default:
		return app.handleFormKey(ev)
	}
	return false
}

func (app *App) handleFormKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		return true
	case tcell.KeyF1:
		app.mode = ModeHelp
		return false
	case tcell.KeyCtrlR:
		app.submit()
		return false
	case tcell.KeyCtrlE:
		app.exportSnapshots()
		return false
	case tcell.KeyCtrlL:
		app.openCityPicker()
		return false
	case tcell.KeyTab, tcell.KeyDown:
		app.focus = (app.focus + 1) % fieldCount
		return false
	case tcell.KeyBacktab, tcell.KeyUp:
		app.focus = (app.focus + fieldCount - 1) % fieldCount
		return false
	case tcell.KeyLeft:
		app.adjustField(-1)
		return false
	case tcell.KeyRight:
		app.adjustField(1)
		return false
	case tcell.KeyEnter:
		switch app.focus {
		case fieldCity:
			app.openCityPicker()
		case fieldFlood:
			app.useFlood = !app.useFlood
		case fieldSubmit:
			app.submit()
		}
		return false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if app.focus == fieldCity && len(app.city) > 0 {
			app.city = app.city[:len(app.city)-1]
		}
		return false
	}

	if r := ev.Rune(); r != 0 && app.focus == fieldCity {
		app.city += string(r)
	} else if ev.Rune() == ' ' && app.focus == fieldFlood {
		app.useFlood = !app.useFlood
	}
	return false
}

// adjustField applies left/right stepping to the focused field, clamped
// to the engine's accepted ranges so the form can never hold an
// out-of-range value.
func (app *App) adjustField(dir int) {
	switch app.focus {
	case fieldScenario:
		if len(app.catalog) > 0 {
			app.scenarioIdx = (app.scenarioIdx + dir + len(app.catalog)) % len(app.catalog)
		}
	case fieldSeverity:
		app.severity = clampSeverity(app.severity + float64(dir)*severityStep)
	case fieldPairs:
		app.nPairs = clampPairs(app.nPairs + dir*pairsStep)
	case fieldFlood:
		app.useFlood = !app.useFlood
	}
}

func clampSeverity(s float64) float64 {
	if s < severityStep {
		return severityStep
	}
	if s > resilience.MaxSeverity {
		return resilience.MaxSeverity
	}
	return s
}

func clampPairs(n int) int {
	if n < resilience.MinPairs {
		return resilience.MinPairs
	}
	if n > resilience.MaxPairs {
		return resilience.MaxPairs
	}
	return n
}

func (app *App) openCityPicker() {
	if len(app.cities) == 0 {
		app.showMessage("no city suggestions; type a city name", MsgInfo)
		return
	}
	app.cityPickIdx = 0
	for i, c := range app.cities {
		if c == app.city {
			app.cityPickIdx = i
		}
	}
	app.mode = ModeCityPick
}

func (app *App) handleCityPickKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		app.mode = ModeForm
	case tcell.KeyUp:
		if app.cityPickIdx > 0 {
			app.cityPickIdx--
		}
	case tcell.KeyDown:
		if app.cityPickIdx < len(app.cities)-1 {
			app.cityPickIdx++
		}
	case tcell.KeyEnter:
		app.city = app.cities[app.cityPickIdx]
		app.mode = ModeForm
	}
}

// currentRequest maps the form onto the wire request.
func (app *App) currentRequest() resilience.SimulationRequest {
	scenario := ""
	if app.scenarioIdx >= 0 && app.scenarioIdx < len(app.catalog) {
		scenario = app.catalog[app.scenarioIdx]
	}
	return resilience.SimulationRequest{
		City:         strings.TrimSpace(app.city),
		Scenario:     scenario,
		Severity:     app.severity,
		NPairs:       app.nPairs,
		UseUSGSFlood: app.useFlood,
	}
}

func (app *App) submit() {
	model := view.Compose(app.tracker.Snapshot(), app.catalog)
	if !model.SubmitEnabled {
		if len(app.catalog) == 0 {
			app.showMessage("no scenarios available yet", MsgError)
		} else {
			app.showMessage("simulation already running", MsgInfo)
		}
		return
	}

	err := app.tracker.Submit(context.Background(), app.currentRequest())
	switch err := err.(type) {
	case nil:
		app.showMessage("submitted", MsgInfo)
	case *session.ValidationError:
		app.showMessage(err.Reason, MsgError)
	default:
		app.showMessage(err.Error(), MsgError)
	}
}

// exportSnapshots writes before/after PNG files for the latest run.
func (app *App) exportSnapshots() {
	snap := app.tracker.Snapshot()
	if snap.State != session.StateSucceeded || snap.Result == nil {
		app.showMessage("nothing to export - run a simulation first", MsgError)
		return
	}
	result := snap.Result

	stamp := time.Now().Format("20060102-150405")
	beforePath := filepath.Join(app.config.ExportDir, fmt.Sprintf("shockview-%s-before.png", stamp))
	afterPath := filepath.Join(app.config.ExportDir, fmt.Sprintf("shockview-%s-after.png", stamp))

	opts := mapimg.DefaultOptions()
	opts.Title = result.City
	if err := writePNG(beforePath, result, false, opts); err != nil {
		app.showMessage("export failed: "+err.Error(), MsgError)
		return
	}
	opts.Title = fmt.Sprintf("%s - %s (severity %.2f)", result.City, result.Scenario, result.Severity)
	if err := writePNG(afterPath, result, true, opts); err != nil {
		app.showMessage("export failed: "+err.Error(), MsgError)
		return
	}
	app.showMessage("exported "+filepath.Base(afterPath), MsgSuccess)
}

func writePNG(path string, result *resilience.SimulationResult, withOverlay bool, opts mapimg.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if withOverlay {
		return mapimg.RenderPNG(f, result.BaselineEdges, result.RemovedEdges, result.Scenario, opts)
	}
	return mapimg.RenderPNG(f, result.BaselineEdges, nil, "", opts)
}

func (app *App) showMessage(msg string, t MessageType) {
	app.message = msg
	app.messageType = t
	app.flashStart.Store(time.Now().UnixMilli())
}
