// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package config

import "testing"

// helper to build a config quickly
func conf(port, url string, baud int) *Config {
	c := Default()
	c.Connection.Port = port
	c.Connection.URL = url
	c.Connection.Baud = baud
	return &c
}

// ---- tests ----

func TestValidate_Defaults(t *testing.T) {
	c := Default()
	if err := Validate(&c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_SerialOnly(t *testing.T) {
	if err := Validate(conf("/dev/ttyUSB0", "", 57600)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_WebSocketOnly(t *testing.T) {
	if err := Validate(conf("", "wss://bridge.local/headset", 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_PortAndURLConflict(t *testing.T) {
	if err := Validate(conf("/dev/ttyUSB0", "ws://bridge.local", 57600)); err == nil {
		t.Fatal("expected error for port+url conflict")
	}
}

func TestValidate_BadURLScheme(t *testing.T) {
	if err := Validate(conf("", "http://bridge.local", 0)); err == nil {
		t.Fatal("expected error for non-websocket scheme")
	}
}

func TestValidate_NegativeBaud(t *testing.T) {
	if err := Validate(conf("/dev/ttyUSB0", "", -1)); err == nil {
		t.Fatal("expected error for negative baud")
	}
}

func TestValidate_StepsRange(t *testing.T) {
	c := Default()
	c.Monitor.Steps = 4
	if err := Validate(&c); err == nil {
		t.Fatal("expected error for steps below range")
	}
	c.Monitor.Steps = 11
	if err := Validate(&c); err == nil {
		t.Fatal("expected error for steps above range")
	}
	c.Monitor.Steps = 0 // unset is fine
	if err := Validate(&c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_HeightRange(t *testing.T) {
	c := Default()
	c.Monitor.Height = 50
	if err := Validate(&c); err == nil {
		t.Fatal("expected error for height below range")
	}
}

func TestValidate_NegativeRates(t *testing.T) {
	c := Default()
	c.Monitor.OutRate = -1
	if err := Validate(&c); err == nil {
		t.Fatal("expected error for negative out_rate")
	}

	c = Default()
	c.Monitor.TickMs = -10
	if err := Validate(&c); err == nil {
		t.Fatal("expected error for negative tick_ms")
	}
}

func TestValidate_Channels(t *testing.T) {
	c := Default()
	c.Monitor.Channels = []string{"Delta", "attention", ""}
	if err := Validate(&c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Monitor.Channels = []string{"Delta", "bogus"}
	if err := Validate(&c); err == nil {
		t.Fatal("expected error for unknown channel")
	}

	c.Monitor.Channels = []string{"HeartRate"}
	if err := Validate(&c); err == nil {
		t.Fatal("expected error for non-plottable channel")
	}
}

func TestNormalize_TrimsAndDrops(t *testing.T) {
	c := Default()
	c.Connection.Port = "  /dev/ttyUSB0 "
	c.Monitor.Channels = []string{" Delta ", "", "theta"}

	Normalize(&c)

	if c.Connection.Port != "/dev/ttyUSB0" {
		t.Errorf("port = %q", c.Connection.Port)
	}
	if len(c.Monitor.Channels) != 2 || c.Monitor.Channels[0] != "Delta" || c.Monitor.Channels[1] != "theta" {
		t.Errorf("channels = %v", c.Monitor.Channels)
	}
}

func TestNormalize_NilConfig(t *testing.T) {
	Normalize(nil) // must not panic
}
