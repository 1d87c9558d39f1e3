package input

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Gamepad is an opened evdev gamepad handler keeping the latest state of its inputs.
type Gamepad struct {
	info   DeviceInfo
	name   string
	layout *Layout
	dev    *evdev.InputDevice
	grab   bool

	mutex sync.RWMutex
	state mapping.PhysicalState
}

func OpenGamepad(info DeviceInfo, grab bool) (*Gamepad, error) {
	dev, err := evdev.Open(info.EventPath())
	if err != nil {
		return nil, fmt.Errorf("opening handler failed: %w", err)
	}

	abs, err := dev.AbsInfos()
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("reading abs info failed: %w", err)
	}

	name, _ := dev.Name()
	name = strings.Trim(name, "\x00")
	if name == "" {
		name = info.Name
	}

	layout := NewLayout(dev.CapableEvents(evdev.EV_KEY), abs)
	log.Info("Gamepad opened",
		zap.String("handler_event", info.Event()), zap.String("handler_name", name),
		zap.Int("buttons", layout.Buttons()), zap.Int("axes", layout.Axes()),
		logger.Debug,
	)
	return &Gamepad{
		info:   info,
		name:   name,
		layout: layout,
		dev:    dev,
		grab:   grab,
		state:  layout.Initial(),
	}, nil
}

func (g *Gamepad) Name() string {
	return g.name
}

func (g *Gamepad) State() mapping.PhysicalState {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.state
}

func (g *Gamepad) ButtonName(id int) string {
	return g.layout.ButtonName(id)
}

func (g *Gamepad) AxisName(id int, positive bool) string {
	return g.layout.AxisName(id, positive)
}

// Run reads events until the context is cancelled or the device goes away.
// The device is closed when Run returns and the state is reset to rest.
func (g *Gamepad) Run(ctx context.Context) error {
	event := g.info.Event()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		err := g.dev.Close()
		if err != nil && ctx.Err() != nil {
			log.Info(fmt.Sprintf("device close failed: %v", err), zap.String("handler_event", event), logger.Debug)
		}
	}()

	if g.grab {
		err := g.dev.Grab()
		if err != nil {
			log.Info(fmt.Sprintf("grabbing device failed: %v", err), zap.String("handler_event", event), zap.String("handler_name", g.name), logger.Warning)
		} else {
			log.Info("Grabbing device for exclusive usage", zap.String("handler_event", event), zap.String("handler_name", g.name), logger.Debug)
		}
	}
	log.Info("Reading input events", zap.String("handler_event", event), zap.String("handler_name", g.name), logger.Debug)

	err := g.dev.NonBlock()
	if err != nil {
		log.Info(fmt.Sprintf("enabling non-blocking event reading mode failed: %v", err),
			zap.String("handler_event", event), zap.String("handler_name", g.name),
			logger.Warning,
		)
	}

	defer func() {
		g.mutex.Lock()
		g.state = mapping.PhysicalState{}
		g.mutex.Unlock()
		log.Info("Reading input events finished", zap.String("handler_event", event), zap.String("handler_name", g.name), logger.Debug)
	}()

	for {
		ev, err := g.dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading events failed: %w", err)
		}

		if ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_DROPPED {
			g.resync()
			continue
		}

		g.mutex.Lock()
		changed := g.layout.Apply(&g.state, *ev)
		g.mutex.Unlock()

		if changed && ev.Type == evdev.EV_KEY {
			log.Info("Button", zap.String("handler_event", event), zap.Int("code", int(ev.Code)), zap.Int32("value", ev.Value), logger.Debug)
		}
	}
}

// resync reloads the axis positions after the kernel dropped events.
func (g *Gamepad) resync() {
	abs, err := g.dev.AbsInfos()
	if err != nil {
		log.Info(fmt.Sprintf("resync failed: %v", err), zap.String("handler_event", g.info.Event()), logger.Warning)
		return
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()
	for code, info := range abs {
		g.layout.Apply(&g.state, evdev.InputEvent{Type: evdev.EV_ABS, Code: code, Value: info.Value})
	}
	log.Info("Events dropped, axes resynchronized", zap.String("handler_event", g.info.Event()), logger.Debug)
}
