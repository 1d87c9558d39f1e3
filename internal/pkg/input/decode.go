package input

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const devicesFile = "/proc/bus/input/devices"

// GetHandlers returns a list of available input handlers in the system.
// Note: there is non-zero probability that returned list may be incomplete while a device
// is still being registered, the next discovery round picks up the rest.
func GetHandlers() ([]DeviceInfo, error) {
	data, err := os.ReadFile(devicesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", devicesFile, err)
	}

	di, err := unmarshal(data)
	if err != nil {
		return nil, err
	}

	return di, nil
}

// unmarshal parses /proc/bus/input/devices file
func unmarshal(data []byte) ([]DeviceInfo, error) {
	var devices = make([]DeviceInfo, 0)

	var device DeviceInfo
	var pending bool

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			if pending {
				devices = append(devices, device)
				device = DeviceInfo{}
				pending = false
			}
			continue
		}
		if len(line) < 3 || line[1] != ':' {
			return devices, fmt.Errorf("malformed line: %q", line)
		}
		pending = true

		label := line[:1]
		info := strings.TrimSpace(line[3:])

		switch label {
		case "I":
			for _, param := range strings.Fields(info) {
				fields := strings.SplitN(param, "=", 2)
				if len(fields) != 2 {
					return devices, fmt.Errorf("malformed id parameter: %q", param)
				}
				v, err := strconv.ParseUint(fields[1], 16, 16)
				if err != nil {
					return devices, fmt.Errorf("hex decoding failed: %w", err)
				}
				switch fields[0] {
				case "Bus":
					device.ID.Bus = uint16(v)
				case "Vendor":
					device.ID.Vendor = uint16(v)
				case "Product":
					device.ID.Product = uint16(v)
				case "Version":
					device.ID.Version = uint16(v)
				}
			}
		case "N":
			device.Name = strings.Trim(strings.TrimPrefix(info, "Name="), "\"")
		case "P":
			device.Phys = strings.TrimPrefix(info, "Phys=")
		case "S":
			device.Sysfs = strings.TrimPrefix(info, "Sysfs=")
		case "U":
			device.Uniq = strings.TrimPrefix(info, "Uniq=")
		case "H":
			device.Handlers = strings.Fields(strings.TrimPrefix(info, "Handlers="))
		case "B":
			fields := strings.SplitN(info, "=", 2)
			if len(fields) != 2 || fields[0] != "EV" {
				continue
			}
			v, err := strconv.ParseUint(fields[1], 16, 64)
			if err != nil {
				return devices, fmt.Errorf("hex decoding failed: %w", err)
			}
			device.Events = v
		}
	}
	if pending {
		devices = append(devices, device)
	}

	return devices, nil
}
