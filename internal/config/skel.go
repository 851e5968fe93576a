// Package config implements starlane's YAML-driven star configuration.
//
// Grounded on the teacher's internal/manifest package: a plain yaml.v3
// tagged struct tree (Manifest/Runtime) loaded by a small os.Open +
// yaml.Unmarshal loader, validated after parsing rather than via struct
// tags.
package config

import (
	"time"

	"github.com/starlane-io/starlane/internal/identity"
	"github.com/starlane-io/starlane/internal/wave"
)

// Skel is a star's own configuration record: its identity, the wait-tier
// duration table the Exchanger uses, and the channel capacities the
// router fabric and transport use for backpressure (spec.md §5).
type Skel struct {
	Star    StarConfig    `yaml:"star"`
	Wait    WaitConfig    `yaml:"wait"`
	Channel ChannelConfig `yaml:"channels"`
	Bind    BindConfig    `yaml:"bind"`
}

// StarConfig identifies this star and where it listens for transport
// connections from other stars.
type StarConfig struct {
	Key     string `yaml:"key"`
	Listen  string `yaml:"listen"`
	MaxHops int    `yaml:"max_hops"`
}

// WaitConfig carries the Exchanger's per-WaitTier timeout table.
type WaitConfig struct {
	LowMs  int `yaml:"low_ms"`
	MedMs  int `yaml:"med_ms"`
	HighMs int `yaml:"high_ms"`
}

// ChannelConfig sizes the buffered channels the router fabric and
// transport outbound queue use (spec.md §5 resource bounds).
type ChannelConfig struct {
	RouterIngress    int `yaml:"router_ingress"`
	Injection        int `yaml:"injection"`
	TransportOutbound int `yaml:"transport_outbound"`
}

// BindConfig carries the Field layer's bind-config cache settings.
type BindConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// Defaults returns a Skel with the same fallback values the teacher's
// manifest loader applies when a runtime section is sparse or absent.
func Defaults() Skel {
	return Skel{
		Star: StarConfig{Key: "default", Listen: "127.0.0.1:7070", MaxHops: 32},
		Wait: WaitConfig{LowMs: 500, MedMs: 5_000, HighMs: 30_000},
		Channel: ChannelConfig{
			RouterIngress:     256,
			Injection:         64,
			TransportOutbound: 256,
		},
		Bind: BindConfig{CacheSize: 512},
	}
}

// Tiers converts the Skel's wait-tier durations into the table the
// Exchanger is constructed with.
func (s Skel) Tiers() map[wave.WaitTier]time.Duration {
	return map[wave.WaitTier]time.Duration{
		wave.WaitLow:  time.Duration(s.Wait.LowMs) * time.Millisecond,
		wave.WaitMed:  time.Duration(s.Wait.MedMs) * time.Millisecond,
		wave.WaitHigh: time.Duration(s.Wait.HighMs) * time.Millisecond,
	}
}

// StarKey parses the configured star identity.
func (s Skel) StarKey() identity.StarKey {
	return identity.StarKey(s.Star.Key)
}
