package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := out.String(); got != "pressfront dev\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestCheckFailsWithoutWordPress(t *testing.T) {
	t.Setenv("WORDPRESS_API_URL", "")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("SESSION_SECRET", "test-secret")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"check"})
	err := root.Execute()
	if err == nil {
		t.Fatal("expected check to fail without WORDPRESS_API_URL")
	}
	if !strings.Contains(out.String(), "wordpress:  (not set)") {
		t.Errorf("check output = %q", out.String())
	}
}

func TestUnknownConfigFile(t *testing.T) {
	root := newRootCmd()
	var stderr bytes.Buffer
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)
	root.SetArgs([]string{"check", "--config", "does-not-exist.yaml"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	// main prints the returned error; cobra must not print it as well.
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}
