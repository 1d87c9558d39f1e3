package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/n64pad/internal/pkg/input"
	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/logrusorgru/aurora"
)

func reportLines(au aurora.Aurora, r mapping.Report) []string {
	var buttons []string
	for i := 0; i < mapping.ButtonCount; i++ {
		in := mapping.Input(i)
		if r.Pressed(in) {
			buttons = append(buttons, au.Green(in.String()).String())
		} else {
			buttons = append(buttons, au.Gray(8, in.String()).String())
		}
	}

	b := r.Bytes()
	return []string{
		strings.Join(buttons[:7], " "),
		strings.Join(buttons[7:], " "),
		fmt.Sprintf("stick x: %4d, y: %4d", r.X, r.Y),
		fmt.Sprintf("status: %02x %02x %02x %02x", b[0], b[1], b[2], b[3]),
	}
}

func deviceLines(au aurora.Aurora, devices []input.DeviceInfo, active input.DeviceInfo, connected bool) []string {
	if len(devices) == 0 {
		return []string{au.Gray(12, "no gamepad found, waiting...").String()}
	}

	var lines []string
	for _, d := range devices {
		marker := " "
		if connected && d.Event() == active.Event() {
			marker = au.Green("*").String()
		}
		lines = append(lines, fmt.Sprintf("%s %s", marker, colorForString(au, d.Name).String()))
		lines = append(lines, fmt.Sprintf("  └ %s, %s, %s", d.ID, d.EventPath(), d.Phys))
	}
	return lines
}

func writeLines(view *gocui.View, lines []string) {
	x, y := view.Size()
	view.Rewind()
	for i := 0; i < y; i++ {
		if i > len(lines)-1 {
			view.Write([]byte(strings.Repeat(" ", x)))
			view.Write([]byte{'\n'})
			continue
		}
		view.Write([]byte(pad(lines[i], x)))
		view.Write([]byte{'\n'})
	}
}

type screen struct {
	au       aurora.Aurora
	editor   *Editor
	manager  *input.Manager
	report   func() mapping.Report
	logs     *logBuffer
	logLevel int
}

func (s screen) render(g *gocui.Gui) error {
	for _, name := range []string{ViewReport, ViewDevices, ViewBindings, ViewHelp} {
		view, err := g.View(name)
		if err != nil {
			return nil // layout not ready yet
		}

		switch name {
		case ViewReport:
			writeLines(view, reportLines(s.au, s.report()))
		case ViewDevices:
			active, err := s.manager.Active()
			writeLines(view, deviceLines(s.au, s.manager.Devices(), active, err == nil))
		case ViewBindings:
			writeLines(view, s.editor.Lines(s.au, s.manager))
		case ViewHelp:
			writeLines(view, []string{s.editor.Status(), s.au.Gray(12, help).String()})
		}
	}

	view, err := g.View(ViewLogs)
	if err != nil {
		return nil
	}
	view.Title = logsTitle(logger.Dropped())
	feeder := Feeder{view: view, au: s.au, logLevel: s.logLevel}
	view.Clear()
	_, y := view.Size()
	for _, msg := range s.logs.ReadLastMessages(y) {
		feeder.Write(msg)
	}
	return nil
}

func logsTitle(dropped uint64) string {
	if dropped == 0 {
		return "[Logs]"
	}
	return fmt.Sprintf("[Logs] (%d dropped)", dropped)
}

// refresh redraws all views on every tick and right after a profile change, until done is closed.
func (s screen) refresh(g *gocui.Gui, rate time.Duration, profiles <-chan mapping.Profile, done <-chan struct{}) {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-profiles:
			g.Update(s.render)
		case <-ticker.C:
			g.Update(s.render)
		}
	}
}
