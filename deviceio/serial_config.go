package deviceio

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// Parity is the serial parity mode, using the conventional single-letter
// encoding from the configuration string grammar.
type Parity byte

const (
	ParityNone Parity = 'N'
	ParityEven Parity = 'E'
	ParityOdd  Parity = 'O'
)

// standardBaudRates is the enumerated set of rates accepted by the
// configuration grammar. The upper end may not be reachable on every
// platform; the serial layer rejects unsupported rates at open time.
var standardBaudRates = []int{
	50, 75, 110, 134, 150, 200, 300, 600,
	1200, 1800, 2400, 4800, 9600, 19200, 38400, 57600,
	115200, 230400, 460800, 500000, 576000, 921600,
	1000000, 1152000, 1500000, 2000000, 2500000,
	3000000, 3500000, 4000000,
}

// SerialConfig is the parsed form of a "<baud>-<databits><parity><stopbits>"
// configuration string, e.g. "9600-8N1" or "115200-7E2".
type SerialConfig struct {
	BaudRate int    // one of standardBaudRates
	DataBits int    // 5, 6, 7 or 8
	Parity   Parity // ParityNone, ParityEven or ParityOdd
	StopBits int    // 1 or 2
}

// DefaultSerialConfig returns the 9600-8N1 configuration used when a
// device is opened without an explicit mode.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   ParityNone,
		StopBits: 1,
	}
}

// ParseSerialConfig parses and validates a serial configuration string.
//
// The grammar is "<baud>-<databits><parity><stopbits>" with baud drawn
// from the standard rate table, data bits in [5, 8], parity one of
// N/n/E/e/O/o, and stop bits 1 or 2. Any deviation returns
// ErrInvalidConfig without touching a device.
func ParseSerialConfig(config string) (SerialConfig, error) {
	rate, mode, found := strings.Cut(config, "-")
	if !found {
		return SerialConfig{}, fmt.Errorf("%w: %q: missing '-' separator", ErrInvalidConfig, config)
	}

	baud, err := strconv.Atoi(rate)
	if err != nil || strings.TrimLeft(rate, "0123456789") != "" {
		return SerialConfig{}, fmt.Errorf("%w: %q: baud rate %q is not numeric", ErrInvalidConfig, config, rate)
	}

	if !slices.Contains(standardBaudRates, baud) {
		return SerialConfig{}, fmt.Errorf("%w: %q: unsupported baud rate %d", ErrInvalidConfig, config, baud)
	}

	if len(mode) != 3 {
		return SerialConfig{}, fmt.Errorf("%w: %q: mode must be <databits><parity><stopbits>", ErrInvalidConfig, config)
	}

	cfg := SerialConfig{BaudRate: baud}

	switch mode[0] {
	case '5', '6', '7', '8':
		cfg.DataBits = int(mode[0] - '0')
	default:
		return SerialConfig{}, fmt.Errorf("%w: %q: data bits must be 5-8", ErrInvalidConfig, config)
	}

	switch mode[1] {
	case 'N', 'n':
		cfg.Parity = ParityNone
	case 'E', 'e':
		cfg.Parity = ParityEven
	case 'O', 'o':
		cfg.Parity = ParityOdd
	default:
		return SerialConfig{}, fmt.Errorf("%w: %q: parity must be N, E or O", ErrInvalidConfig, config)
	}

	switch mode[2] {
	case '1':
		cfg.StopBits = 1
	case '2':
		cfg.StopBits = 2
	default:
		return SerialConfig{}, fmt.Errorf("%w: %q: stop bits must be 1 or 2", ErrInvalidConfig, config)
	}

	return cfg, nil
}

// String renders the configuration back into its grammar form.
func (c SerialConfig) String() string {
	return fmt.Sprintf("%d-%d%c%d", c.BaudRate, c.DataBits, c.Parity, c.StopBits)
}

// mode converts the configuration into the serial library's port mode.
func (c SerialConfig) mode() *serial.Mode {
	m := &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
	}

	switch c.Parity {
	case ParityEven:
		m.Parity = serial.EvenParity
	case ParityOdd:
		m.Parity = serial.OddParity
	default:
		m.Parity = serial.NoParity
	}

	if c.StopBits == 2 {
		m.StopBits = serial.TwoStopBits
	} else {
		m.StopBits = serial.OneStopBit
	}

	return m
}
