package input

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"
)

type PhysicalID string

// DeviceInfo contains information of every reported event device
// it is supposed to be created by unmarshal function only
type DeviceInfo struct {
	ID       InputID  // ID of the device
	Name     string   // name of the device
	Phys     string   // physical path to the device in the system hierarchy
	Sysfs    string   // sysfs path
	Uniq     string   // unique identification code for the device (if device has it)
	Handlers []string // list of input handles associated with the device
	Events   uint64   // bitmap of supported event types
}

type InputID struct {
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func (i InputID) String() string {
	return fmt.Sprintf("%s 0x%04x 0x%04x 0x%04x", BusName(i.Bus), i.Vendor, i.Product, i.Version)
}

var busNames = map[uint16]string{
	0x01: "pci",
	0x03: "usb",
	0x05: "bluetooth",
	0x06: "virtual",
	0x11: "i8042",
	0x14: "gameport",
	0x18: "i2c",
	0x19: "host",
}

func BusName(bus uint16) string {
	name, ok := busNames[bus]
	if !ok {
		return fmt.Sprintf("bus 0x%02x", bus)
	}
	return name
}

// Event returns event name, like "event0" for /dev/input/event0
func (d DeviceInfo) Event() string {
	for _, handler := range d.Handlers {
		if strings.HasPrefix(handler, "event") {
			return handler
		}
	}
	return ""
}

// EventPath returns a /dev/input/event filepath for button presses
func (d DeviceInfo) EventPath() string {
	event := d.Event()
	if event == "" {
		return ""
	}
	return fmt.Sprintf("/dev/input/%s", event)
}

func (d DeviceInfo) Supports(t evdev.EvType) bool {
	return t < 64 && d.Events&(1<<uint(t)) != 0
}

// IsGamepad tells if the kernel registered a joystick for the handler and it can be read through evdev.
// Devices with a known event bitmap also have to report keys.
func (d DeviceInfo) IsGamepad() bool {
	if d.Event() == "" {
		return false
	}
	if d.Events != 0 && !d.Supports(evdev.EV_KEY) {
		return false
	}
	for _, h := range d.Handlers {
		if strings.HasPrefix(h, "js") {
			return true
		}
	}
	return false
}

// PhysicalUUID returns unique UUID based on connection of given USB port
func (d DeviceInfo) PhysicalUUID() PhysicalID {
	phys := strings.Split(d.Phys, "/")
	return PhysicalID(phys[0])
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("\"%s\" (%s, %s)", d.Name, d.ID.String(), d.Event())
}
