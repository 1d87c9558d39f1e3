package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gethiox/n64pad/internal/pkg/config"
	"github.com/gethiox/n64pad/internal/pkg/controller"
	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/gethiox/n64pad/internal/pkg/profile"
	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"
)

const captureTimeout = 5 * time.Second

type tuningRow int

const (
	rowDeadzone tuningRow = iota
	rowOuterEdge
	rowRange
	rowClamped
	rowA2DThreshold
	tuningRows
)

var tuningLabels = [tuningRows]string{"Deadzone", "Outer edge", "Range", "Clamped", "A2D threshold"}

const rows = int(mapping.InputCount) + int(tuningRows)

type capture struct {
	input     mapping.Input
	secondary bool
	before    mapping.PhysicalState
	deadline  time.Time
}

// Editor holds the state of the terminal configuration ui, every change goes to the profile store.
type Editor struct {
	ctl        *controller.Controller
	port       int
	configPath string
	profileDir string
	version    string

	mutex     sync.Mutex
	cursor    int
	secondary bool
	capture   *capture
	status    string
	profiles  int
}

func NewEditor(ctl *controller.Controller, configPath, profileDir, version string) *Editor {
	return &Editor{
		ctl:        ctl,
		configPath: configPath,
		profileDir: profileDir,
		version:    version,
		status:     "ready",
	}
}

func (e *Editor) setStatus(format string, args ...interface{}) {
	e.status = fmt.Sprintf(format, args...)
	log.Info(e.status, logger.Action)
}

func (e *Editor) Up() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.capture != nil {
		return
	}
	e.cursor = (e.cursor + rows - 1) % rows
}

func (e *Editor) Down() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.capture != nil {
		return
	}
	e.cursor = (e.cursor + 1) % rows
}

func (e *Editor) ToggleColumn() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.secondary = !e.secondary
}

func (e *Editor) selectedInput() (mapping.Input, bool) {
	if e.cursor < int(mapping.InputCount) {
		return mapping.Input(e.cursor), true
	}
	return 0, false
}

// Select starts a binding capture on an input row and toggles the clamp flag on its row.
func (e *Editor) Select(now time.Time) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	in, ok := e.selectedInput()
	if !ok {
		if tuningRow(e.cursor-int(mapping.InputCount)) == rowClamped {
			e.adjust(1)
		}
		return
	}

	e.capture = &capture{
		input:     in,
		secondary: e.secondary,
		before:    e.ctl.Source().State(),
		deadline:  now.Add(captureTimeout),
	}
	e.status = fmt.Sprintf("%s: awaiting input...", in)
}

func (e *Editor) Cancel() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.capture != nil {
		e.capture = nil
		e.status = "capture cancelled"
	}
}

func setSlot(p *mapping.Profile, in mapping.Input, secondary bool, src mapping.Source) {
	if secondary {
		p.Bindings[in].Secondary = src
	} else {
		p.Bindings[in].Primary = src
	}
}

func (e *Editor) Unmap() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	in, ok := e.selectedInput()
	if !ok || e.capture != nil {
		return
	}
	secondary := e.secondary
	e.ctl.Store().Update(func(p *mapping.Profile) {
		setSlot(p, in, secondary, mapping.Unmapped())
	})
	e.setStatus("%s unmapped", in)
}

// Tick feeds the current physical state into a running capture.
func (e *Editor) Tick(state mapping.PhysicalState, now time.Time) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	c := e.capture
	if c == nil {
		return
	}

	threshold := e.ctl.Store().Load().Tuning.A2DThreshold
	src, ok := mapping.Detect(c.before, state, threshold)
	if ok {
		e.ctl.Store().Update(func(p *mapping.Profile) {
			setSlot(p, c.input, c.secondary, src)
		})
		e.capture = nil
		e.setStatus("%s bound to %s", c.input, src.Label(e.ctl.Source()))
		return
	}
	if now.After(c.deadline) {
		e.capture = nil
		e.status = fmt.Sprintf("%s: no input, capture timed out", c.input)
		return
	}
	c.before = mapping.Settle(c.before, state, threshold)
}

func step(v, delta, lo, hi float64) float64 {
	v = math.Round((v+delta)*100) / 100
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Adjust changes the selected tuning value by one step in the given direction.
func (e *Editor) Adjust(dir int) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.adjust(dir)
}

func (e *Editor) adjust(dir int) {
	row := tuningRow(e.cursor - int(mapping.InputCount))
	if row < 0 || e.capture != nil {
		return
	}
	delta := float64(dir) * 0.01

	var t mapping.Tuning
	e.ctl.Store().Update(func(p *mapping.Profile) {
		switch row {
		case rowDeadzone:
			p.Tuning.Deadzone = step(p.Tuning.Deadzone, delta, 0, 1)
		case rowOuterEdge:
			p.Tuning.OuterEdge = step(p.Tuning.OuterEdge, delta, 0, 1)
		case rowRange:
			p.Tuning.Range += dir
		case rowClamped:
			p.Tuning.Clamped = !p.Tuning.Clamped
		case rowA2DThreshold:
			p.Tuning.A2DThreshold = step(p.Tuning.A2DThreshold, delta, 0, 1)
		}
		p.Tuning = p.Tuning.Normalize()
		t = p.Tuning
	})
	e.setStatus("%s: %s", tuningLabels[row], tuningValue(t, row))
}

func (e *Editor) Defaults() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.capture = nil
	e.ctl.Store().Set(mapping.DefaultProfile())
	e.setStatus("default bindings restored, not saved yet")
}

func (e *Editor) Save() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	err := config.Save(e.configPath, e.port, e.ctl.Store().Load())
	if err != nil {
		e.status = fmt.Sprintf("save failed: %v", err)
		log.Info(e.status, zap.String("path", e.configPath), logger.Error)
		return
	}
	e.setStatus("config saved")
}

func (e *Editor) Reload() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	p, err := config.Load(e.configPath, e.port)
	if err != nil {
		e.status = fmt.Sprintf("reload failed: %v", err)
		log.Info(e.status, zap.String("path", e.configPath), logger.Error)
		return
	}
	e.capture = nil
	e.ctl.Store().Set(p)
	e.setStatus("config reloaded")
}

func (e *Editor) profileName() string {
	for _, d := range e.ctl.Source().Devices() {
		return d.Name
	}
	return "default"
}

func (e *Editor) SaveProfile() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	name := e.profileName()
	path := profile.PathFor(e.profileDir, name, profile.YAML)
	err := ensureDir(e.profileDir)
	if err == nil {
		err = profile.Export(path, name, e.ctl.Store().Load())
	}
	if err != nil {
		e.status = fmt.Sprintf("profile save failed: %v", err)
		log.Info(e.status, zap.String("path", path), logger.Error)
		return
	}
	e.setStatus("profile \"%s\" saved", name)
}

// NextProfile loads the profiles of the profile directory one after another.
func (e *Editor) NextProfile() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entries, err := profile.List(e.profileDir)
	if err != nil {
		e.status = fmt.Sprintf("listing profiles failed: %v", err)
		log.Info(e.status, logger.Error)
		return
	}
	if len(entries) == 0 {
		e.status = "no profiles found in " + e.profileDir
		return
	}

	entry := entries[e.profiles%len(entries)]
	e.profiles++

	_, p, err := profile.Import(entry.Path)
	if err != nil {
		e.status = fmt.Sprintf("profile load failed: %v", err)
		log.Info(e.status, zap.String("path", entry.Path), logger.Error)
		return
	}
	e.capture = nil
	e.ctl.Store().Set(p)
	e.setStatus("profile \"%s\" loaded, not saved yet", entry.Name)
}

func (e *Editor) About() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.status = strings.ReplaceAll(controller.About(e.version), "\n\n", ": ")
	e.status = strings.ReplaceAll(e.status, "\n", " ")
}

func (e *Editor) Status() string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.status
}

func tuningValue(t mapping.Tuning, row tuningRow) string {
	switch row {
	case rowDeadzone:
		return fmt.Sprintf("%.2f", t.Deadzone)
	case rowOuterEdge:
		return fmt.Sprintf("%.2f", t.OuterEdge)
	case rowRange:
		return fmt.Sprintf("%d", t.Range)
	case rowClamped:
		if t.Clamped {
			return "yes"
		}
		return "no"
	case rowA2DThreshold:
		return fmt.Sprintf("%.2f", t.A2DThreshold)
	default:
		return ""
	}
}

// Lines renders the bindings table, the selected cell is highlighted.
func (e *Editor) Lines(au aurora.Aurora, namer mapping.Namer) []string {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	p := e.ctl.Store().Load()
	lines := make([]string, 0, rows+2)
	lines = append(lines, fmt.Sprintf(" %-14s %s %s", "",
		au.Bold(fmt.Sprintf("%-20s", "Primary")), au.Bold(fmt.Sprintf("%-20s", "Secondary")),
	))

	for _, in := range mapping.Inputs() {
		slot := p.Bindings[in]
		cells := [2]string{slot.Primary.Label(namer), slot.Secondary.Label(namer)}
		if e.capture != nil && e.capture.input == in {
			cells[btoi(e.capture.secondary)] = "Awaiting input..."
		}

		selected := e.cursor == int(in)
		var rendered [2]string
		for i, text := range cells {
			cell := fmt.Sprintf("%-20s", text)
			switch {
			case selected && btoi(e.secondary) == i:
				rendered[i] = au.Reverse(cell).String()
			case text == "Not set":
				rendered[i] = au.Gray(10, cell).String()
			default:
				rendered[i] = cell
			}
		}
		label := fmt.Sprintf("%-14s", in)
		if !slot.IsMapped() {
			label = au.Red(label).String()
		}
		lines = append(lines, fmt.Sprintf(" %s %s %s", label, rendered[0], rendered[1]))
	}

	lines = append(lines, "")
	for row := rowDeadzone; row < tuningRows; row++ {
		value := fmt.Sprintf("%-20s", tuningValue(p.Tuning, row))
		if e.cursor == int(mapping.InputCount)+int(row) {
			value = au.Reverse(value).String()
		}
		lines = append(lines, fmt.Sprintf(" %-14s %s", tuningLabels[row], value))
	}
	return lines
}

func ensureDir(dir string) error {
	err := os.MkdirAll(dir, 0o777)
	if err != nil {
		return fmt.Errorf("cannot create \"%s\" directory: %w", dir, err)
	}
	return nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
