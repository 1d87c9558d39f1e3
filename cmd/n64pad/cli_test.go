package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
)

func TestRawStringLen(t *testing.T) {
	for i, tc := range []struct {
		input    string
		expected int
	}{
		{input: "", expected: 0},
		{input: "a", expected: 1},
		{input: "a\033", expected: 2},
		{input: "a\033[", expected: 3},
		{input: "a\033[2", expected: 4},
		{input: "a\033[2A", expected: 1},
		{input: "a\033[2Aa", expected: 2},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			l := rawStringLen(tc.input)
			assert.Equal(t, tc.expected, l)
		})
	}
}

func TestCliLevel(t *testing.T) {
	for i, tc := range []struct {
		flag     int
		expected int
	}{
		{flag: -3, expected: logger.InfoLvl},
		{flag: 0, expected: logger.InfoLvl},
		{flag: 1, expected: logger.ActionLvl},
		{flag: 2, expected: logger.KeysLvl},
		{flag: 3, expected: logger.AnalogLvl},
		{flag: 4, expected: logger.DebugLvl},
		{flag: 10, expected: logger.DebugLvl},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, cliLevel(tc.flag))
		})
	}
}

func TestUnpack(t *testing.T) {
	msg, err := unpack([]byte(`{"ts":1600000000000000000,"msg":"hello","level":1,"port":0,"path":"a.ini"}`))
	assert.Equal(t, nil, err)
	assert.Equal(t, "hello", msg.Msg)
	assert.Equal(t, logger.WarningLvl, msg.Level)
	assert.Equal(t, "a.ini", msg.Path)
	assert.Equal(t, 0, *msg.Port)
	assert.Equal(t, time.Unix(0, 1600000000000000000), time.Time(msg.Ts))

	_, err = unpack([]byte("not json"))
	assert.NotEqual(t, nil, err)
}

func TestPrepareString(t *testing.T) {
	au := aurora.NewAurora(false)
	port := 0
	msg := Entry{
		Ts:    TimeNanosecond(time.Date(2022, 1, 2, 3, 4, 5, 6000000, time.Local)),
		Msg:   "controller config reloaded",
		Level: logger.InfoLvl,
		Path:  "controller.ini",
		Port:  &port,
	}

	assert.Equal(t, "[03:04:05.006] controller config reloaded [port=0] [path=controller.ini]",
		prepareString(msg, au, -1, logger.InfoLvl))
	assert.Equal(t, "", prepareString(msg, au, -1, logger.WarningLvl))

	line := prepareString(msg, au, 80, logger.InfoLvl)
	assert.Equal(t, 80, rawStringLen(line))
	assert.True(t, strings.HasSuffix(line, "[port=0] [path=controller.ini]"))

	msg.Msg = strings.Repeat("x", 100)
	line = prepareString(msg, au, 80, logger.InfoLvl)
	assert.True(t, strings.Contains(line, "..."))
	assert.Equal(t, 80, rawStringLen(line))

	msg.Caller = "config/controller.go:42"
	line = prepareString(msg, au, -1, logger.DebugLvl)
	assert.True(t, strings.HasSuffix(line, "(config/controller.go:42)"))
}

func TestPad(t *testing.T) {
	au := aurora.NewAurora(true)
	s := pad(au.Red("ab").String(), 5)
	assert.Equal(t, 5, rawStringLen(s))
	assert.Equal(t, "abcdef", pad("abcdef", 3))
}

func TestLogsTitle(t *testing.T) {
	assert.Equal(t, "[Logs]", logsTitle(0))
	assert.Equal(t, "[Logs] (3 dropped)", logsTitle(3))
}
