// Package capture provides the live packet source feeding the decoder: one
// pcap handle, one in-flight read, timeouts surfaced as "no data yet". This
// is the only place in the tree where errors propagate instead of being
// silently dropped; everything past the Poll boundary is best-effort.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket/pcap"

	"github.com/danmuck/lobbysniff/internal/w3gs"
)

const (
	DefaultFilter      = "tcp port 6112"
	DefaultSnapLen     = 65535
	DefaultPollTimeout = 250 * time.Millisecond
)

// ErrTimeout reports that no packet arrived within one poll timeout. It is
// not fatal; the caller polls again.
var ErrTimeout = errors.New("capture: no packet within poll timeout")

// Config selects the device and read behavior of a live source.
type Config struct {
	Device      string
	Filter      string
	SnapLen     int32
	Promiscuous bool
	PollTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Filter == "" {
		c.Filter = DefaultFilter
	}
	if c.SnapLen <= 0 {
		c.SnapLen = DefaultSnapLen
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	return c
}

// Packet is one captured link-layer frame with its capture timestamp.
type Packet struct {
	Data []byte
	At   w3gs.Timestamp
}

// Source is a live pcap packet source. It supports one in-flight Poll at a
// time; Close is the out-of-band stop signal.
type Source struct {
	handle *pcap.Handle
	device string
}

// OpenLive opens the device and applies the BPF filter. Failures here are
// the propagated kind: interface not found, permission denied, filter
// compilation.
func OpenLive(cfg Config) (*Source, error) {
	cfg = cfg.withDefaults()
	handle, err := pcap.OpenLive(cfg.Device, cfg.SnapLen, cfg.Promiscuous, cfg.PollTimeout)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", cfg.Device, err)
	}
	if err := handle.SetBPFFilter(cfg.Filter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("capture: filter %q: %w", cfg.Filter, err)
	}
	return &Source{handle: handle, device: cfg.Device}, nil
}

// Poll reads one frame. ErrTimeout means nothing arrived within the poll
// timeout; any other error is fatal for this source.
func (s *Source) Poll() (Packet, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			return Packet{}, ErrTimeout
		}
		return Packet{}, fmt.Errorf("capture: read %s: %w", s.device, err)
	}
	return Packet{Data: data, At: splitTimestamp(ci.Timestamp)}, nil
}

func (s *Source) Close() {
	s.handle.Close()
}

// splitTimestamp converts a pcap capture time into the seconds+microseconds
// pair the decoder carries on every event.
func splitTimestamp(t time.Time) w3gs.Timestamp {
	return w3gs.Timestamp{
		Seconds: uint32(t.Unix()),
		Micros:  uint32(t.Nanosecond() / 1000),
	}
}

// Device describes one capturable interface for the CLI listing.
type Device struct {
	Name        string
	Description string
	Addresses   []string
}

// Devices enumerates the host's capturable interfaces.
func Devices() ([]Device, error) {
	found, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("capture: list interfaces: %w", err)
	}
	devices := make([]Device, 0, len(found))
	for _, d := range found {
		dev := Device{Name: d.Name, Description: d.Description}
		for _, addr := range d.Addresses {
			dev.Addresses = append(dev.Addresses, addr.IP.String())
		}
		devices = append(devices, dev)
	}
	return devices, nil
}
