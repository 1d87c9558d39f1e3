package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gethiox/n64pad/internal/pkg/config"
	"github.com/gethiox/n64pad/internal/pkg/controller"
	"github.com/gethiox/n64pad/internal/pkg/input"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/gethiox/n64pad/internal/pkg/profile"
	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	state   mapping.PhysicalState
	devices []input.DeviceInfo
}

func (s *staticSource) Devices() []input.DeviceInfo { return s.devices }

func (s *staticSource) State() mapping.PhysicalState { return s.state }

func (s *staticSource) ButtonName(id int) string { return "btn" }

func (s *staticSource) AxisName(id int, positive bool) string {
	if positive {
		return "stick+"
	}
	return "stick-"
}

func testEditor(t *testing.T) (*Editor, *staticSource, *mapping.Store) {
	dir := t.TempDir()
	source := &staticSource{devices: []input.DeviceInfo{{Name: "Test Pad"}}}
	store := mapping.NewStore(mapping.DefaultProfile())
	ctl := controller.New(source, store)
	e := NewEditor(ctl, filepath.Join(dir, "controller.ini"), filepath.Join(dir, "profiles"), "test")
	return e, source, store
}

func TestEditorCursor(t *testing.T) {
	e, _, _ := testEditor(t)

	e.Up()
	assert.Equal(t, rows-1, e.cursor)
	e.Down()
	e.Down()
	assert.Equal(t, 1, e.cursor)

	e.ToggleColumn()
	assert.True(t, e.secondary)
}

func TestEditorCapture(t *testing.T) {
	e, source, store := testEditor(t)
	now := time.Now()

	// B, secondary slot
	e.Down()
	e.ToggleColumn()
	source.state.Buttons[5] = true
	e.Select(now)
	assert.True(t, strings.HasPrefix(e.Status(), "B: awaiting input"))

	// a button held while starting the capture is not picked up
	e.Tick(source.state, now)
	assert.NotEqual(t, nil, e.capture)

	// movement is ignored while capturing
	e.Down()
	assert.Equal(t, 1, e.cursor)

	source.state.Axes[3] = -20000
	e.Tick(source.state, now)
	assert.Equal(t, (*capture)(nil), e.capture)
	assert.Equal(t, mapping.Slot{Primary: mapping.Button(2), Secondary: mapping.Axis(3, false)}, store.Load().Bindings[mapping.B])
	assert.Equal(t, "B bound to stick-", e.Status())

	e.Select(now)
	e.Tick(source.state, now.Add(captureTimeout+time.Millisecond))
	assert.Equal(t, (*capture)(nil), e.capture)
	assert.True(t, strings.HasSuffix(e.Status(), "timed out"))

	e.Select(now)
	e.Cancel()
	assert.Equal(t, (*capture)(nil), e.capture)
	assert.Equal(t, "capture cancelled", e.Status())
}

func TestEditorCaptureHeldButton(t *testing.T) {
	e, source, store := testEditor(t)
	now := time.Now()

	source.state.Buttons[5] = true
	e.Select(now)
	e.Tick(source.state, now)
	assert.NotEqual(t, (*capture)(nil), e.capture)

	// released and pressed again
	source.state.Buttons[5] = false
	e.Tick(source.state, now)
	assert.NotEqual(t, (*capture)(nil), e.capture)
	source.state.Buttons[5] = true
	e.Tick(source.state, now)
	assert.Equal(t, (*capture)(nil), e.capture)
	assert.Equal(t, mapping.Button(5), store.Load().Bindings[mapping.A].Primary)
}

func TestEditorUnmap(t *testing.T) {
	e, _, store := testEditor(t)
	e.Unmap()
	assert.Equal(t, mapping.Slot{Secondary: mapping.Button(1)}, store.Load().Bindings[mapping.A])

	// tuning rows have nothing to unmap
	e.cursor = int(mapping.InputCount)
	e.Unmap()
	assert.Equal(t, mapping.DefaultProfile().Bindings[mapping.B], store.Load().Bindings[mapping.B])
}

func TestEditorAdjust(t *testing.T) {
	e, _, store := testEditor(t)

	e.Adjust(1)
	assert.Equal(t, mapping.DefaultTuning(), store.Load().Tuning)

	e.cursor = int(mapping.InputCount) + int(rowDeadzone)
	e.Adjust(1)
	assert.Equal(t, 0.06, store.Load().Tuning.Deadzone)
	for i := 0; i < 10; i++ {
		e.Adjust(-1)
	}
	assert.Equal(t, 0.0, store.Load().Tuning.Deadzone)

	e.cursor = int(mapping.InputCount) + int(rowRange)
	e.Adjust(-1)
	assert.Equal(t, 79, store.Load().Tuning.Range)
	for i := 0; i < 60; i++ {
		e.Adjust(1)
	}
	assert.Equal(t, mapping.MaxRange, store.Load().Tuning.Range)

	e.cursor = int(mapping.InputCount) + int(rowClamped)
	e.Select(time.Now())
	assert.True(t, store.Load().Tuning.Clamped)
	assert.Equal(t, "Clamped: yes", e.Status())
	e.Adjust(1)
	assert.False(t, store.Load().Tuning.Clamped)

	e.cursor = int(mapping.InputCount) + int(rowA2DThreshold)
	e.Adjust(1)
	assert.Equal(t, 0.26, store.Load().Tuning.A2DThreshold)
}

func TestEditorSaveReload(t *testing.T) {
	e, _, store := testEditor(t)

	store.Update(func(p *mapping.Profile) { p.Tuning.Range = 42 })
	e.Save()
	assert.Equal(t, "config saved", e.Status())

	p, err := config.Load(e.configPath, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, 42, p.Tuning.Range)

	e.Defaults()
	assert.Equal(t, mapping.DefaultProfile(), store.Load())

	e.Reload()
	assert.Equal(t, 42, store.Load().Tuning.Range)
}

func TestEditorProfiles(t *testing.T) {
	e, _, store := testEditor(t)

	e.NextProfile()
	assert.True(t, strings.HasPrefix(e.Status(), "no profiles found"))

	store.Update(func(p *mapping.Profile) { p.Tuning.Range = 33 })
	e.SaveProfile()
	assert.Equal(t, "profile \"Test Pad\" saved", e.Status())

	entries, err := profile.List(e.profileDir)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "Test_Pad.yaml", filepath.Base(entries[0].Path))

	store.Set(mapping.DefaultProfile())
	e.NextProfile()
	assert.Equal(t, 33, store.Load().Tuning.Range)
	assert.Equal(t, "profile \"Test Pad\" loaded, not saved yet", e.Status())
}

func TestEditorLines(t *testing.T) {
	e, _, store := testEditor(t)
	store.Update(func(p *mapping.Profile) { p.Bindings[mapping.Z] = mapping.Slot{} })

	lines := e.Lines(aurora.NewAurora(false), &staticSource{})
	assert.Equal(t, 1+int(mapping.InputCount)+1+int(tuningRows), len(lines))
	assert.True(t, strings.Contains(lines[1], "A"))
	assert.True(t, strings.Contains(lines[1], "btn"))
	assert.True(t, strings.Contains(lines[3], "Not set"))
	assert.True(t, strings.Contains(lines[len(lines)-2], "Clamped"))
	assert.True(t, strings.Contains(lines[len(lines)-2], "no"))

	// inputs without any binding stand out
	au := aurora.NewAurora(true)
	lines = e.Lines(au, &staticSource{})
	assert.True(t, strings.Contains(lines[3], au.Red(fmt.Sprintf("%-14s", "Z")).String()))
	assert.False(t, strings.Contains(lines[1], au.Red(fmt.Sprintf("%-14s", "A")).String()))

	e.About()
	assert.True(t, strings.HasPrefix(e.Status(), "n64pad test: "))
}
