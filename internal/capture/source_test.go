package capture

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Device: "eth0"}.withDefaults()
	if cfg.Filter != DefaultFilter {
		t.Fatalf("filter default mismatch: %q", cfg.Filter)
	}
	if cfg.SnapLen != DefaultSnapLen {
		t.Fatalf("snaplen default mismatch: %d", cfg.SnapLen)
	}
	if cfg.PollTimeout != DefaultPollTimeout {
		t.Fatalf("poll timeout default mismatch: %v", cfg.PollTimeout)
	}
}

func TestConfigExplicitValuesKept(t *testing.T) {
	cfg := Config{Device: "eth0", Filter: "tcp", SnapLen: 256, PollTimeout: time.Second}.withDefaults()
	if cfg.Filter != "tcp" || cfg.SnapLen != 256 || cfg.PollTimeout != time.Second {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
}

func TestSplitTimestamp(t *testing.T) {
	at := time.Unix(1_700_000_000, 250_000*1000)
	ts := splitTimestamp(at)
	if ts.Seconds != 1_700_000_000 || ts.Micros != 250_000 {
		t.Fatalf("timestamp split mismatch: %+v", ts)
	}
	if !ts.Time().Equal(at) {
		t.Fatalf("round trip mismatch: %v != %v", ts.Time(), at)
	}
}
