package input

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"go.uber.org/zap"
)

var ErrNoDevice = errors.New("no gamepad connected")

// Source provides the state of the physical controller, absent devices read as rest.
type Source interface {
	Devices() []DeviceInfo
	State() mapping.PhysicalState
	ButtonName(id int) string
	AxisName(id int, positive bool) string
}

type pad interface {
	Run(ctx context.Context) error
	State() mapping.PhysicalState
	ButtonName(id int) string
	AxisName(id int, positive bool) string
	Name() string
}

type ManagerConfig struct {
	Grab          bool
	NameFilter    string // case-insensitive substring of the device name, empty accepts any
	DiscoveryRate time.Duration
}

type connection struct {
	info   DeviceInfo
	pad    pad
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager tracks connected gamepads and keeps the first matching one open.
type Manager struct {
	cfg  ManagerConfig
	scan func() ([]DeviceInfo, error)
	open func(info DeviceInfo, grab bool) (pad, error)

	mutex   sync.RWMutex
	devices []DeviceInfo
	active  *connection
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.DiscoveryRate <= 0 {
		cfg.DiscoveryRate = time.Second
	}
	return &Manager{
		cfg:  cfg,
		scan: GetHandlers,
		open: func(info DeviceInfo, grab bool) (pad, error) {
			return OpenGamepad(info, grab)
		},
	}
}

// Run monitors device changes until the context is done.
func (m *Manager) Run(ctx context.Context) error {
	log.Info("Monitor new devices engaged", logger.Debug)
	ticker := time.NewTicker(m.cfg.DiscoveryRate)
	defer ticker.Stop()

	for {
		m.refresh(ctx)
		select {
		case <-ctx.Done():
			m.disconnect()
			log.Info("Monitor new devices disengaged", logger.Debug)
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Manager) matches(info DeviceInfo) bool {
	if !info.IsGamepad() {
		return false
	}
	if m.cfg.NameFilter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(info.Name), strings.ToLower(m.cfg.NameFilter))
}

func (m *Manager) refresh(ctx context.Context) {
	infos, err := m.scan()
	if err != nil {
		log.Info(fmt.Sprintf("device discovery failed: %v", err), logger.Warning)
		return
	}

	var pads []DeviceInfo
	for _, info := range infos {
		if m.matches(info) {
			pads = append(pads, info)
		}
	}

	m.mutex.Lock()
	m.devices = pads
	active := m.active
	m.mutex.Unlock()

	if active != nil {
		if alive(active) && present(active.info, pads) {
			return
		}
		log.Info("Gamepad disconnected", zap.String("device_name", active.info.Name), zap.String("handler_event", active.info.Event()), logger.Info)
		m.disconnect()
	}

	for _, info := range pads {
		err := m.connect(ctx, info)
		if err != nil {
			log.Info(fmt.Sprintf("failed to open gamepad: %v", err), zap.String("device_name", info.Name), logger.Warning)
			continue
		}
		return
	}
}

func alive(c *connection) bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func present(info DeviceInfo, infos []DeviceInfo) bool {
	for _, i := range infos {
		if i.Event() == info.Event() && i.Phys == info.Phys && i.ID == info.ID {
			return true
		}
	}
	return false
}

func (m *Manager) connect(ctx context.Context, info DeviceInfo) error {
	p, err := m.open(info, m.cfg.Grab)
	if err != nil {
		return err
	}

	padCtx, cancel := context.WithCancel(ctx)
	c := &connection{info: info, pad: p, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		err := p.Run(padCtx)
		if err != nil {
			log.Info(fmt.Sprintf("gamepad stopped: %v", err), zap.String("device_name", info.Name), logger.Warning)
		}
	}()

	m.mutex.Lock()
	m.active = c
	m.mutex.Unlock()

	log.Info("Gamepad connected",
		zap.String("device_name", p.Name()),
		zap.String("handler_event", info.Event()),
		zap.String("id", info.ID.String()),
		logger.Info,
	)
	return nil
}

func (m *Manager) disconnect() {
	m.mutex.Lock()
	c := m.active
	m.active = nil
	m.mutex.Unlock()

	if c == nil {
		return
	}
	c.cancel()
	<-c.done
}

// Devices returns the gamepads seen in the last discovery round.
func (m *Manager) Devices() []DeviceInfo {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	devices := make([]DeviceInfo, len(m.devices))
	copy(devices, m.devices)
	return devices
}

// Active returns the gamepad currently read.
func (m *Manager) Active() (DeviceInfo, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.active == nil {
		return DeviceInfo{}, ErrNoDevice
	}
	return m.active.info, nil
}

func (m *Manager) State() mapping.PhysicalState {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.active == nil {
		return mapping.PhysicalState{}
	}
	return m.active.pad.State()
}

var defaultLayout = NewLayout(nil, nil)

func (m *Manager) ButtonName(id int) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.active == nil {
		return defaultLayout.ButtonName(id)
	}
	return m.active.pad.ButtonName(id)
}

func (m *Manager) AxisName(id int, positive bool) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.active == nil {
		return defaultLayout.AxisName(id, positive)
	}
	return m.active.pad.AxisName(id, positive)
}
