package input

import (
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
)

const devicesFixture = `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
P: Phys=PNP0C0C/button/input0
S: Sysfs=/devices/LNXSYSTM:00/LNXSYBUS:00/PNP0C0C:00/input/input0
U: Uniq=
H: Handlers=kbd event0
B: PROP=0
B: EV=3
B: KEY=10000000000000 0

I: Bus=0003 Vendor=045e Product=028e Version=0114
N: Name="Microsoft X-Box 360 pad"
P: Phys=usb-0000:00:14.0-2/input0
S: Sysfs=/devices/pci0000:00/0000:00:14.0/usb1/1-2/1-2:1.0/input/input20
U: Uniq=
H: Handlers=event20 js0
B: PROP=0
B: EV=20000b
B: KEY=7cdb000000000000 0 0 0 0
B: ABS=3003f
B: FF=107030000 0

`

func TestUnmarshal(t *testing.T) {
	devices, err := unmarshal([]byte(devicesFixture))
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(devices))

	power := devices[0]
	assert.Equal(t, "Power Button", power.Name)
	assert.Equal(t, []string{"kbd", "event0"}, power.Handlers)
	assert.Equal(t, uint64(0x3), power.Events)
	assert.False(t, power.IsGamepad())

	gamepad := devices[1]
	assert.Equal(t, InputID{Bus: 0x03, Vendor: 0x045e, Product: 0x028e, Version: 0x0114}, gamepad.ID)
	assert.Equal(t, "Microsoft X-Box 360 pad", gamepad.Name)
	assert.Equal(t, "usb-0000:00:14.0-2/input0", gamepad.Phys)
	assert.Equal(t, "/devices/pci0000:00/0000:00:14.0/usb1/1-2/1-2:1.0/input/input20", gamepad.Sysfs)
	assert.Equal(t, "", gamepad.Uniq)
	assert.Equal(t, []string{"event20", "js0"}, gamepad.Handlers)
	assert.Equal(t, uint64(0x20000b), gamepad.Events)

	assert.True(t, gamepad.IsGamepad())
	assert.True(t, gamepad.Supports(evdev.EV_KEY))
	assert.True(t, gamepad.Supports(evdev.EV_ABS))
	assert.True(t, gamepad.Supports(evdev.EV_FF))
	assert.False(t, gamepad.Supports(evdev.EV_REL))
	assert.Equal(t, "event20", gamepad.Event())
	assert.Equal(t, "/dev/input/event20", gamepad.EventPath())
	assert.Equal(t, PhysicalID("usb-0000:00:14.0-2"), gamepad.PhysicalUUID())
	assert.Equal(t, "usb 0x045e 0x028e 0x0114", gamepad.ID.String())
}

func TestUnmarshalEdges(t *testing.T) {
	devices, err := unmarshal(nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, []DeviceInfo{}, devices)

	// last block without a trailing empty line
	devices, err = unmarshal([]byte("N: Name=\"Pad\"\nH: Handlers=js1 event3"))
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(devices))
	assert.Equal(t, "/dev/input/event3", devices[0].EventPath())
	assert.True(t, devices[0].IsGamepad())

	_, err = unmarshal([]byte("I: Bus=zzzz\n\n"))
	assert.NotEqual(t, nil, err)

	_, err = unmarshal([]byte("garbage\n"))
	assert.NotEqual(t, nil, err)
}

func TestNoEventHandler(t *testing.T) {
	d := DeviceInfo{Handlers: []string{"js0"}}
	assert.Equal(t, "", d.EventPath())
	assert.False(t, d.IsGamepad())
	assert.Equal(t, "bus 0x42", BusName(0x42))
}

func TestGamepadWithoutKeys(t *testing.T) {
	d := DeviceInfo{Handlers: []string{"event3", "js0"}, Events: 1<<uint(evdev.EV_SYN) | 1<<uint(evdev.EV_ABS)}
	assert.False(t, d.IsGamepad())

	d.Events |= 1 << uint(evdev.EV_KEY)
	assert.True(t, d.IsGamepad())
}
