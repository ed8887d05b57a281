package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr = %s", cfg.App.Addr())
	}
	if cfg.Membership.OccupancyPolicy != OccupancyReassign {
		t.Fatalf("occupancy policy = %s, want reassign default", cfg.Membership.OccupancyPolicy)
	}
	if cfg.Provisioning.DefaultISO != "CN" {
		t.Fatalf("default iso = %s", cfg.Provisioning.DefaultISO)
	}
	if cfg.Provisioning.Timeout() != 10*time.Second {
		t.Fatalf("provisioning timeout = %s", cfg.Provisioning.Timeout())
	}
	if cfg.Billing.SyncInterval() != time.Minute {
		t.Fatalf("billing interval = %s", cfg.Billing.SyncInterval())
	}
	if cfg.Billing.Enabled {
		t.Fatal("billing sync must be opt-in")
	}
}

func TestLoadOccupancyPolicy(t *testing.T) {
	t.Setenv("MEMBERSHIP_OCCUPANCY_POLICY", "reject")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Membership.OccupancyPolicy != OccupancyReject {
		t.Fatalf("occupancy policy = %s", cfg.Membership.OccupancyPolicy)
	}

	t.Setenv("MEMBERSHIP_OCCUPANCY_POLICY", "evict")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown occupancy policy")
	}
}
