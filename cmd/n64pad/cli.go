package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
)

const (
	ViewReport   = "report"
	ViewDevices  = "devices"
	ViewBindings = "bindings"
	ViewLogs     = "logs"
	ViewHelp     = "help"
)

const help = "↑↓ select  tab primary/secondary  enter bind  del unmap  ←→ adjust  " +
	"s save  r reload  d defaults  p save profile  l load profile  a about  ctrl+c quit"

func GetCli(e *Editor) (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.Output256, true)
	if err != nil {
		return nil, err
	}

	g.SetManagerFunc(Layout)

	for _, kb := range []struct {
		key     interface{}
		handler func(g *gocui.Gui, v *gocui.View) error
	}{
		{gocui.KeyCtrlC, quit},
		{'q', quit},
		{gocui.KeyArrowUp, action(e.Up)},
		{'k', action(e.Up)},
		{gocui.KeyArrowDown, action(e.Down)},
		{'j', action(e.Down)},
		{gocui.KeyTab, action(e.ToggleColumn)},
		{gocui.KeyEnter, action(func() { e.Select(time.Now()) })},
		{gocui.KeyEsc, action(e.Cancel)},
		{gocui.KeyDelete, action(e.Unmap)},
		{gocui.KeyBackspace, action(e.Unmap)},
		{gocui.KeyBackspace2, action(e.Unmap)},
		{gocui.KeyArrowLeft, action(func() { e.Adjust(-1) })},
		{gocui.KeyArrowRight, action(func() { e.Adjust(1) })},
		{'s', action(e.Save)},
		{'r', action(e.Reload)},
		{'d', action(e.Defaults)},
		{'p', action(e.SaveProfile)},
		{'l', action(e.NextProfile)},
		{'a', action(e.About)},
	} {
		if err := g.SetKeybinding("", kb.key, gocui.ModNone, kb.handler); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func action(f func()) func(g *gocui.Gui, v *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		f()
		return nil
	}
}

func Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	split := maxX / 2
	if split < 40 {
		split = 40
	}

	if v, err := g.SetView(ViewReport, 0, 0, split-1, 6, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Controller]"
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewDevices, 0, 6, split-1, 13, gocui.TOP); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Devices]"
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewBindings, split, 0, maxX-1, maxY-4, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Bindings]"
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewLogs, 0, 13, split-1, maxY-4, gocui.TOP); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Logs]"
		v.Autoscroll = false
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewHelp, 0, maxY-4, maxX-1, maxY-1, gocui.TOP); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = true
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

type TimeNanosecond time.Time

func (j *TimeNanosecond) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*j = TimeNanosecond(time.Unix(0, v))
	return nil
}

type Entry struct {
	Ts     TimeNanosecond `json:"ts"`
	Caller string         `json:"caller"`
	Msg    string         `json:"msg"`
	Level  int            `json:"level"`

	Device       string `json:"device_name"`
	HandlerEvent string `json:"handler_event"`
	Path         string `json:"path"`
	Section      string `json:"section"`
	Key          string `json:"key"`
	Port         *int   `json:"port"`
}

func unpack(data []byte) (Entry, error) {
	var v Entry
	err := json.Unmarshal(data, &v)
	return v, err
}

// cliLevel turns the -loglevel flag into the highest logger level shown.
func cliLevel(flagLevel int) int {
	if flagLevel >= 4 {
		return logger.DebugLvl
	}
	if flagLevel < 0 {
		flagLevel = 0
	}
	return flagLevel + logger.InfoLvl
}

type Feeder struct {
	view     *gocui.View
	au       aurora.Aurora
	logLevel int
}

func gray(v uint8) aurora.Color {
	if v > 23 {
		v = 23
	}
	return aurora.Color(232+v) << 16
}

func color(r, g, b uint8) aurora.Color {
	return aurora.Color(16+36*r+6*g+b) << 16
}

func terminator(r rune) bool {
	return r >= 0x40 && r <= 0x7e
}

// returns the same color for the same string
func colorForString(au aurora.Aurora, s string) aurora.Value {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()

	r, g, b := uint8(sum)&0b00000111, uint8(sum>>8)&0b00000111, uint8(sum>>16)&0b00000111
	if r > 5 {
		r = 5
	}
	if g > 5 {
		g = 5
	}
	if b > 5 {
		b = 5
	}

	// avoid dark colors
	if r+g+b < 3 {
		r += 1
		g += 1
		b += 1
	}

	return au.Index(16+36*r+6*g+b, s)
}

// rawStringLen returns a len of string ignoring included escape sequences
func rawStringLen(s string) int {
	var sequence bool
	var escLens []int
	var escLen int

	for i, r := range s {
		if !sequence {
			if r == '\033' {
				if i >= len(s)-1 { // esc seems to be last character
					continue
				}
				if s[i+1] == '[' {
					sequence = true
					escLen += 1
					continue
				}

			}
		} else {
			if r == '[' && s[i-1] == '\033' {
				escLen += 1
				continue
			}
			if terminator(r) {
				sequence = false
				escLen += 1
				escLens = append(escLens, escLen)
				escLen = 0
			} else {
				escLen += 1
			}
		}
	}
	var sum int
	for _, x := range escLens {
		sum += x
	}
	return len(s) - sum
}

func pad(s string, width int) string {
	free := width - rawStringLen(s)
	if free < 0 {
		free = 0
	}
	return s + strings.Repeat(" ", free)
}

func prepareString(msg Entry, au aurora.Aurora, width, logLevel int) string {
	if msg.Level > logLevel {
		return ""
	}

	var msgColor aurora.Color

	switch msg.Level {
	case logger.ErrorLvl:
		msgColor = color(5, 1, 1)
	case logger.WarningLvl:
		msgColor = color(5, 5, 1)
	case logger.InfoLvl:
		msgColor = gray(18)
	case logger.ActionLvl:
		msgColor = gray(18)
	case logger.KeysLvl:
		msgColor = gray(15)
	case logger.AnalogLvl:
		msgColor = gray(11)
	default:
		msgColor = gray(9)
	}

	t := time.Time(msg.Ts)
	timestamp := fmt.Sprintf(
		"[%s]",
		au.Reset(t.Format("15:04:05.000")).Colorize(color(1, 1, 5)).String(),
	)

	var fields []string
	if msg.Port != nil {
		fields = append(fields, fmt.Sprintf("[port=%d]", *msg.Port))
	}
	if msg.Section != "" {
		fields = append(fields, fmt.Sprintf("[section=%s]", colorForString(au, msg.Section).String()))
	}
	if msg.Key != "" {
		fields = append(fields, fmt.Sprintf("[key=%s]", colorForString(au, msg.Key).String()))
	}
	if msg.Path != "" {
		fields = append(fields, fmt.Sprintf("[path=%s]", colorForString(au, msg.Path).String()))
	}
	if msg.HandlerEvent != "" {
		fields = append(fields, fmt.Sprintf("[%s]", colorForString(au, msg.HandlerEvent).String()))
	}
	if msg.Device != "" {
		fields = append(fields, fmt.Sprintf("[dev=%s]", colorForString(au, msg.Device).String()))
	}
	if logLevel >= logger.DebugLvl && msg.Caller != "" {
		x := strings.SplitN(msg.Caller, ":", 2)
		if len(x) == 2 {
			fields = append(fields, fmt.Sprintf("(%s:%s)", colorForString(au, x[0]).String(), x[1]))
		}
	}
	fieldsText := strings.Join(fields, " ")

	if width < 0 {
		m := au.Reset(msg.Msg).Colorize(msgColor).String()
		if fieldsText == "" {
			return fmt.Sprintf("%s %s", timestamp, m)
		}
		return fmt.Sprintf("%s %s %s", timestamp, m, fieldsText)
	}

	fieldsLen := rawStringLen(fieldsText)
	timeLen := rawStringLen(timestamp)
	msgLen := len(msg.Msg)

	var m string
	freeSpace := width - (timeLen + 1 + msgLen + 1 + fieldsLen)
	if freeSpace < 0 {
		limit := (width - (fieldsLen + 1 + timeLen + 1)) - 3
		if limit < 20 {
			m = au.Reset(msg.Msg).Colorize(msgColor).String()
			fieldsText = au.Gray(12, "(fields hidden)").String()
			freeSpace = width - (timeLen + 1 + msgLen + 1 + rawStringLen(fieldsText))
			if freeSpace < 0 {
				freeSpace = 0
			}
		} else {
			m = au.Reset(msg.Msg[:limit] + "...").Colorize(msgColor).String()
			freeSpace = 0
		}
	} else {
		m = au.Reset(msg.Msg).Colorize(msgColor).String()
	}

	return fmt.Sprintf("%s %s%s %s", timestamp, m, strings.Repeat(" ", freeSpace), fieldsText)
}

func (f *Feeder) Write(data []byte) {
	msg, err := unpack(data)
	if err != nil {
		f.view.Write(data)
		f.view.Write([]byte{'\n'})
		return
	}

	x, _ := f.view.Size()

	s := prepareString(msg, f.au, x, f.logLevel)
	if s != "" {
		f.view.Write([]byte(s))
		f.view.Write([]byte{'\n'})
	}
}
