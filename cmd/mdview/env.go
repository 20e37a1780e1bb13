package main

import (
	"io"
	"os"
	"os/exec"
	"time"

	mdview "github.com/alnah/go-mdview"
	"github.com/go-rod/rod/lib/launcher"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Environ     func() []string
	LookPath    func(string) (string, error) // locates commands such as mmdc
	FindBrowser func() (string, bool)        // locates Chrome/Chromium
	OpenURL     func(string) error           // opens the viewer in the desktop browser
	Options     []mdview.Option              // applied after the config-derived options
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Environ:     os.Environ,
		LookPath:    exec.LookPath,
		FindBrowser: launcher.LookPath,
		OpenURL:     openURL,
	}
}

func openURL(url string) error {
	launcher.Open(url)
	return nil
}
