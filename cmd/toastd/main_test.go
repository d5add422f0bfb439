package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/toastd/internal/config"
	"github.com/vango-dev/toastd/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRender(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		success int
		failure int
	}{
		{"no params", []string{"--url", "/"}, 0, 0},
		{"message", []string{"--url", "/?msg=Saved"}, 1, 0},
		{"both", []string{"--url", "/?msg=Saved&error=Denied"}, 1, 1},
		{"before lifetime", []string{"--url", "/?msg=Saved", "--advance", "2999ms"}, 1, 0},
		{"after lifetime", []string{"--url", "/?msg=Saved", "--advance", "3s"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "--dir", dir}, tt.args...)
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.HasPrefix(out, "<!DOCTYPE html>") {
				t.Errorf("output should start with a doctype: %.40q", out)
			}
			if got := strings.Count(out, "alert-success fade-slide"); got != tt.success {
				t.Errorf("success toasts = %d, want %d", got, tt.success)
			}
			if got := strings.Count(out, "alert-error fade-slide"); got != tt.failure {
				t.Errorf("error toasts = %d, want %d", got, tt.failure)
			}
		})
	}
}

func TestRenderKeepsContainerAfterRemoval(t *testing.T) {
	out, err := execute(t, "render", "--dir", t.TempDir(), "--url", "/?msg=Saved", "--advance", "10s")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<div class="toast-container"></div>`) {
		t.Errorf("empty container should remain:\n%s", out)
	}
}

func TestRenderTemplate(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "page.html")
	markup := `<html><body><main>Orders</main><div class="toast-container"></div></body></html>`
	if err := os.WriteFile(tmpl, []byte(markup), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "render", "--dir", dir, "--template", tmpl, "--url", "/orders?error=Out%20of%20stock", "--hids")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<main") || !strings.Contains(out, "Out of stock") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Count(out, `class="toast-container"`) != 1 {
		t.Error("existing container should be reused")
	}
	if !strings.Contains(out, "data-hid=") {
		t.Error("--hids should write hydration IDs")
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	_, err := execute(t, "render", "--dir", t.TempDir(), "--template", "nope.html")
	if !errors.HasCode(err, "T104") {
		t.Errorf("err = %v, want T104", err)
	}
}

func TestRenderUsesConfigLifetime(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	cfg.Toast.Lifetime = "10s"
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "render", "--dir", dir, "--url", "/?msg=Saved", "--advance", "5s")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "alert-success") {
		t.Error("toast should outlive 5s with a 10s lifetime")
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", "--dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, config.ConfigFileName) {
		t.Errorf("output = %q", out)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load after init: %v", err)
	}
	if cfg.Toast.Lifetime != config.DefaultLifetime {
		t.Errorf("lifetime = %q", cfg.Toast.Lifetime)
	}

	if _, err := execute(t, "init", "--dir", dir); !errors.HasCode(err, "T200") {
		t.Errorf("second init = %v, want T200", err)
	}
	if _, err := execute(t, "init", "--dir", dir, "--force"); err != nil {
		t.Errorf("init --force = %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}

	out, _ = execute(t, "version")
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version output = %q", out)
	}
}

func TestLoadConfigLogFlags(t *testing.T) {
	cfg, err := loadConfig(&globalFlags{dir: t.TempDir(), logLevel: "debug", logFormat: "json"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}

	var buf bytes.Buffer
	newLogger(cfg, &buf).Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("json log = %q", buf.String())
	}

	if _, err := loadConfig(&globalFlags{dir: t.TempDir(), logLevel: "loud"}); err == nil {
		t.Error("invalid log level should fail validation")
	}
}
