package mdlog

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	l := New(Config{})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want InfoLevel", l.GetLevel())
	}
}

func TestNewHonorsExplicitLevel(t *testing.T) {
	l := New(Config{Level: "debug"})
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want DebugLevel", l.GetLevel())
	}
}

func TestNewFallsBackOnInvalidLevel(t *testing.T) {
	l := New(Config{Level: "not-a-level"})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want InfoLevel fallback", l.GetLevel())
	}
}

func TestNewRoutesToFileWhenConfigured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdfh.log")
	l := New(Config{File: path})
	l.WithComponent("test").Info("hello")
	if _, err := l.Out.Write(nil); err != nil {
		t.Fatalf("unexpected error writing zero bytes: %v", err)
	}
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Fatal("Default() should return the same Logger instance across calls")
	}
}
