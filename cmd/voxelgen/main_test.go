package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"voxelmesh/internal/config"
	"voxelmesh/internal/world"
)

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	if err := os.WriteFile(path, []byte("seed = 7\nnoise = \"value\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, set, err := parseFlags([]string{"-config", path, "-chunks", "1,2,3", "-workers", "2"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	cfg, err := loadConfig(o, set)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Seed != 7 || cfg.Noise != world.NoiseValue {
		t.Errorf("file values lost: seed=%d noise=%q", cfg.Seed, cfg.Noise)
	}
	if cfg.Chunks != (config.Axis{X: 1, Y: 2, Z: 3}) || cfg.Workers != 2 {
		t.Errorf("flags not applied: %+v workers=%d", cfg.Chunks, cfg.Workers)
	}
}

func TestBadAxisFlag(t *testing.T) {
	o, set, err := parseFlags([]string{"-extent", "16,16"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if _, err := loadConfig(o, set); !errors.Is(err, world.ErrConfiguration) {
		t.Fatalf("got %v, want ErrConfiguration", err)
	}
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	o, set, err := parseFlags([]string{
		"-chunks", "2,2,2", "-extent", "4,4,4",
		"-obj", filepath.Join(dir, "w.obj"),
		"-preview", filepath.Join(dir, "w.png"),
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	cfg, err := loadConfig(o, set)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	if err := run(context.Background(), log, cfg, o); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"w.obj", "w.mtl", "w.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
