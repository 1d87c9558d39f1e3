package logger

import (
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Messages carries every encoded log entry, the CLI drains it into the terminal or the log view.
var Messages = make(chan []byte, 128)

const (
	ErrorLvl   = 0
	WarningLvl = 1
	InfoLvl    = 2
	ActionLvl  = 3
	KeysLvl    = 4
	AnalogLvl  = 5

	DebugLvl = 378
)

var (
	Error   = zap.Int("level", ErrorLvl)
	Warning = zap.Int("level", WarningLvl)
	Info    = zap.Int("level", InfoLvl)
	Action  = zap.Int("level", ActionLvl)
	Keys    = zap.Int("level", KeysLvl)
	Analog  = zap.Int("level", AnalogLvl)

	Debug = zap.Int("level", DebugLvl)
)

var (
	dropped uint64

	fileLock sync.Mutex
	file     io.Writer
)

// SetFile mirrors every entry into w as one JSON line, nil disables it.
func SetFile(w io.Writer) {
	fileLock.Lock()
	file = w
	fileLock.Unlock()
}

// Dropped returns how many entries were lost because nobody drained Messages in time.
func Dropped() uint64 {
	return atomic.LoadUint64(&dropped)
}

type chanWriter struct {
	sync.Mutex
}

func (w *chanWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	defer w.Unlock()

	var newSlice = make([]byte, len(p))
	copy(newSlice, p)

	fileLock.Lock()
	if file != nil {
		_, _ = file.Write(append(newSlice[:len(newSlice):len(newSlice)], '\n'))
	}
	fileLock.Unlock()

	select {
	case Messages <- newSlice:
	default:
		atomic.AddUint64(&dropped, 1)
	}
	return len(p), nil
}

func (w *chanWriter) Sync() error {
	return nil
}

func GetLogger() *zap.Logger {
	writer := &chanWriter{}
	cfg := zap.NewProductionEncoderConfig()
	cfg.SkipLineEnding = true
	cfg.EncodeTime = zapcore.EpochNanosTimeEncoder
	cfg.LevelKey = ""
	encoder := zapcore.NewJSONEncoder(cfg)

	logger := zap.New(
		zapcore.NewCore(encoder, zapcore.Lock(writer), zap.DebugLevel),
		zap.AddCaller(),
	)
	return logger
}
