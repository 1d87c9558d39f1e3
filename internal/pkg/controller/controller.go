// Package controller is the emulator facing front: it reads the physical gamepad, applies the
// live profile and hands out console reports, one call per polled frame.
package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/gethiox/n64pad/internal/pkg/input"
	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	Name  = "n64pad"
	Ports = 4
)

// Port describes one controller port of the console.
type Port struct {
	Present bool
	RawData bool
}

// Runner is implemented by sources that need a background loop, like input.Manager.
type Runner interface {
	Run(ctx context.Context) error
}

type Controller struct {
	source input.Source
	store  *mapping.Store

	mutex  sync.Mutex
	cancel context.CancelFunc
	done   chan error
	last   mapping.Report
}

func New(source input.Source, store *mapping.Store) *Controller {
	return &Controller{source: source, store: store}
}

func (c *Controller) Store() *mapping.Store {
	return c.store
}

func (c *Controller) Source() input.Source {
	return c.source
}

// InitiateControllers reports the port layout, only the first port has a controller plugged in.
func (c *Controller) InitiateControllers() [Ports]Port {
	var ports [Ports]Port
	ports[0].Present = true
	log.Info("controllers initiated", zap.Int("present", 1), logger.Debug)
	return ports
}

// RomOpen starts the device discovery when the source needs one. Calling it again while the
// source is running does nothing.
func (c *Controller) RomOpen(ctx context.Context) {
	log.Info("rom opened", logger.Debug)

	runner, ok := c.source.(Runner)
	if !ok {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	c.cancel, c.done = cancel, done
	go func() {
		err := runner.Run(ctx)
		if err != nil {
			log.Info(fmt.Sprintf("device discovery stopped: %s", err), logger.Error)
		}
		done <- err
	}()
}

// Close stops what RomOpen started and waits for it.
func (c *Controller) Close() error {
	c.mutex.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mutex.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	err := <-done
	log.Info("controller closed", logger.Debug)
	return err
}

// Keys maps the current physical state into the console report of the given port.
// Ports without a controller read as released.
func (c *Controller) Keys(port int) mapping.Report {
	if port != 0 {
		return mapping.Report{}
	}

	report := mapping.Map(c.source.State(), c.store.Load())

	c.mutex.Lock()
	last := c.last
	c.last = report
	c.mutex.Unlock()

	if report.Buttons != last.Buttons {
		log.Info(report.String(), zap.Int("port", port), logger.Keys)
	} else if report.X != last.X || report.Y != last.Y {
		log.Info(report.String(), zap.Int("port", port), logger.Analog)
	}
	return report
}

// About returns the text shown in the about box.
func About(version string) string {
	return fmt.Sprintf(
		"%s %s\n\nN64 controller input remapping for Linux evdev gamepads.\n"+
			"Bindings and tuning are stored in the controller config, per port section.",
		Name, version,
	)
}
