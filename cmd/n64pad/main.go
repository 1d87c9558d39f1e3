package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/n64pad/internal/pkg/config"
	"github.com/gethiox/n64pad/internal/pkg/controller"
	"github.com/gethiox/n64pad/internal/pkg/input"
	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/gethiox/n64pad/internal/pkg/profile"
	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath = flag.String("config", "./n64pad-config/n64pad.config", "application config path")
	grab       = flag.Bool("grab", false, "grab the gamepad for exclusive usage, overrides config")
	ui         = flag.Bool("ui", false, "engage terminal configuration ui")
	nocolor    = flag.Bool("nocolor", false, "disable color")
	silent     = flag.Bool("silent", false, "no output logging")
	logFile    = flag.String("logfile", "", "also write raw log entries into the given file")
	exportPath = flag.String("export", "", "write the current controller profile into a .yaml/.toml file and exit")
	importPath = flag.String("import", "", "load a .yaml/.toml profile into the controller config and exit")
	dump       = flag.Bool("dump", false, "print every changed controller report")
	logLevel   = flag.Int("loglevel", 1,
		"logging level, each level enables additional information class (0-4, default: 1)\n"+
			"\navailable options:\n"+
			"0: general info (eg. device appearance status)\n"+
			"1: actions (bindings, tuning and config changes)\n"+
			"2: controller button changes\n"+
			"3: controller stick changes\n"+
			"4: debug",
	)
)

// printLogs writes log entries to stdout until done is closed, then drains what is left.
func printLogs(au aurora.Aurora, level int, done <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	show := func(data []byte) {
		if *silent {
			return
		}
		msg, err := unpack(data)
		if err != nil {
			fmt.Printf("%s\n", string(data))
			return
		}
		m := prepareString(msg, au, -1, level)
		if m != "" {
			fmt.Printf("%s\n", m)
		}
	}

	for {
		select {
		case data := <-logger.Messages:
			show(data)
		case <-done:
			for {
				select {
				case data := <-logger.Messages:
					show(data)
				default:
					return
				}
			}
		}
	}
}

// collectLogs feeds the ui log buffer until done is closed.
func collectLogs(buf *logBuffer, done <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case data := <-logger.Messages:
			buf.WriteMessage(data)
		case <-done:
			return
		}
	}
}

func handleSigs(sigs <-chan os.Signal, cancel func()) {
	var counter int
	for sig := range sigs {
		if counter > 0 {
			fmt.Println("Dirty exit")
			os.Exit(1)
		}
		log.Info(fmt.Sprintf("signal received: %v", sig), logger.Debug)
		cancel()
		counter++
	}
}

// reloadConfig applies the controller config to the store when it differs from the live profile.
// The file is only read, a half written file without the controller section is skipped.
func reloadConfig(path string, store *mapping.Store) (bool, error) {
	p, err := config.Read(path, 0)
	if err != nil {
		return false, err
	}
	if p == store.Load() {
		return false, nil
	}
	store.Set(p)
	return true, nil
}

// watchConfig reloads the controller profile whenever the config file is written.
func watchConfig(ctx context.Context, wg *sync.WaitGroup, path string, store *mapping.Store) {
	defer wg.Done()
	changes, err := config.Watch(ctx, path)
	if err != nil {
		log.Info(fmt.Sprintf("config watcher disabled: %s", err), zap.String("path", path), logger.Warning)
		return
	}
	for range changes {
		changed, err := reloadConfig(path, store)
		switch {
		case errors.Is(err, config.ErrNoSection):
			log.Info("controller section missing, reload skipped", zap.String("path", path), logger.Debug)
		case err != nil:
			log.Info(fmt.Sprintf("config reload failed: %s", err), zap.String("path", path), logger.Error)
		case changed:
			log.Info("controller config reloaded", zap.String("path", path), logger.Info)
		}
	}
}

func openLogFile(path string) *os.File {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		panic(err)
	}
	logger.SetFile(fd)
	return fd
}

// exportImport handles the one-shot -export and -import modes.
func exportImport(cfg AppConfig) {
	if *importPath != "" {
		name, p, err := profile.Import(*importPath)
		if err != nil {
			panic(err)
		}
		err = config.Save(cfg.N64Pad.ControllerConfig, 0, p)
		if err != nil {
			panic(err)
		}
		log.Info(fmt.Sprintf("profile \"%s\" imported", name), zap.String("path", cfg.N64Pad.ControllerConfig), logger.Info)
	}

	if *exportPath != "" {
		p, err := config.Load(cfg.N64Pad.ControllerConfig, 0)
		if err != nil {
			panic(err)
		}
		err = profile.Export(*exportPath, "", p)
		if err != nil {
			panic(err)
		}
		log.Info("profile exported", zap.String("path", *exportPath), logger.Info)
	}
}

func runUI(ctx context.Context, g *gocui.Gui, cancel func()) {
	err := g.MainLoop()
	if err != nil && err != gocui.ErrQuit && ctx.Err() == nil {
		panic(err)
	}
	cancel()
}

func poll(ctx context.Context, ctl *controller.Controller, editor *Editor, rate time.Duration, report func(r mapping.Report)) {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	var last mapping.Report
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r := ctl.Keys(0)
			if editor != nil {
				editor.Tick(ctl.Source().State(), now)
			}
			report(r)
			if *dump && r != last {
				b := r.Bytes()
				fmt.Printf("%s  %02x %02x %02x %02x\n", r, b[0], b[1], b[2], b[3])
			}
			last = r
		}
	}
}

func main() {
	flag.Parse()

	level := cliLevel(*logLevel)
	au := aurora.NewAurora(!*nocolor)
	withUI := *ui && !*silent

	if *logFile != "" {
		fd := openLogFile(*logFile)
		defer func() {
			logger.SetFile(nil)
			fd.Close()
		}()
	}

	err := createConfigIfNeeded(*configPath)
	if err != nil {
		panic(err)
	}
	cfg, err := LoadAppConfig(*configPath)
	if err != nil {
		panic(err)
	}

	// entries logged so far wait in logger.Messages
	logsDone := make(chan struct{})
	logsWg := sync.WaitGroup{}
	logs := newLogBuffer(cfg.N64Pad.LogBufferSize)
	logsWg.Add(1)
	if withUI {
		go collectLogs(logs, logsDone, &logsWg)
	} else {
		go printLogs(au, level, logsDone, &logsWg)
	}
	defer func() {
		close(logsDone)
		logsWg.Wait()
	}()

	log.Info(fmt.Sprintf("n64pad config: %+v", cfg), logger.Debug)

	if *exportPath != "" || *importPath != "" {
		exportImport(cfg)
		return
	}

	p, err := config.Load(cfg.N64Pad.ControllerConfig, 0)
	if err != nil {
		panic(err)
	}

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSigs(sigs, cancel)

	store := mapping.NewStore(p)
	manager := input.NewManager(input.ManagerConfig{
		Grab:          cfg.Device.Grab || *grab,
		NameFilter:    cfg.Device.Name,
		DiscoveryRate: cfg.N64Pad.DiscoveryRate,
	})
	ctl := controller.New(manager, store)
	ctl.InitiateControllers()
	ctl.RomOpen(ctx)

	wg := sync.WaitGroup{}
	wg.Add(1)
	go watchConfig(ctx, &wg, cfg.N64Pad.ControllerConfig, store)

	var editor *Editor
	var current = func(r mapping.Report) {}
	if withUI {
		editor = NewEditor(ctl, cfg.N64Pad.ControllerConfig, cfg.N64Pad.ProfileDir, version)
		g, err := GetCli(editor)
		if err != nil {
			panic(err)
		}

		var mutex sync.Mutex
		var latest mapping.Report
		current = func(r mapping.Report) {
			mutex.Lock()
			latest = r
			mutex.Unlock()
		}

		s := screen{
			au:      au,
			editor:  editor,
			manager: manager,
			report: func() mapping.Report {
				mutex.Lock()
				defer mutex.Unlock()
				return latest
			},
			logs:     logs,
			logLevel: level,
		}
		uiDone := make(chan struct{})
		go s.refresh(g, cfg.N64Pad.LogViewRate, store.Subscribe(), uiDone)
		go runUI(ctx, g, cancel)
		defer func() {
			close(uiDone)
			g.Close()
		}()
	} else if !*silent {
		fmt.Printf("for interactive configuration use -ui flag\n")
	}

	poll(ctx, ctl, editor, cfg.N64Pad.PollRate, current)

	log.Info("waiting...", logger.Debug)
	err = ctl.Close()
	if err != nil {
		log.Info(fmt.Sprintf("closing controller failed: %s", err), logger.Warning)
	}
	wg.Wait()
}
