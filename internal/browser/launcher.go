// Package browser opens series pages in a private browser window, falling
// back to the system default browser.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	pkgbrowser "github.com/pkg/browser"
)

const urlPlaceholder = "{url}"

var errBraveNotFound = errors.New("brave not found")

type Opener interface {
	Open(url string) error
}

type command struct {
	name string
	args []string
	// wait for exit; only commands that return promptly
	wait bool
}

type Launcher struct {
	custom   []string
	goos     string
	logger   *slog.Logger
	exists   func(path string) bool
	run      func(cmd command) error
	fallback func(url string) error
}

// NewLauncher prefers customCommand when set. It may contain {url};
// otherwise the url is appended as the last argument.
func NewLauncher(customCommand string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		custom:   strings.Fields(customCommand),
		goos:     runtime.GOOS,
		logger:   logger,
		exists:   fileExists,
		run:      runCommand,
		fallback: pkgbrowser.OpenURL,
	}
}

func (l *Launcher) Open(url string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}

	cmd, err := l.preferred(url)
	if err == nil {
		err = l.run(cmd)
	}
	if err == nil {
		return nil
	}

	l.logger.Debug("private browser launch failed, using system default", "url", url, "error", err)
	if fallbackErr := l.fallback(url); fallbackErr != nil {
		return fmt.Errorf("open %s: %w", url, errors.Join(err, fallbackErr))
	}
	return nil
}

func (l *Launcher) preferred(url string) (command, error) {
	if len(l.custom) > 0 {
		return customCommand(l.custom, url), nil
	}

	switch l.goos {
	case "darwin":
		return command{name: "open", args: []string{"-a", "Brave Browser", "--args", "--incognito", url}, wait: true}, nil
	case "windows":
		for _, path := range windowsBravePaths() {
			if l.exists(path) {
				return command{name: path, args: []string{"--incognito", url}}, nil
			}
		}
		return command{}, errBraveNotFound
	default:
		return command{name: "brave-browser", args: []string{"--incognito", url}}, nil
	}
}

func customCommand(fields []string, url string) command {
	args := make([]string, 0, len(fields))
	substituted := false
	for _, field := range fields[1:] {
		if strings.Contains(field, urlPlaceholder) {
			field = strings.ReplaceAll(field, urlPlaceholder, url)
			substituted = true
		}
		args = append(args, field)
	}
	if !substituted {
		args = append(args, url)
	}
	return command{name: fields[0], args: args}
}

func windowsBravePaths() []string {
	paths := []string{
		`C:\Program Files\BraveSoftware\Brave-Browser\Application\brave.exe`,
		`C:\Program Files (x86)\BraveSoftware\Brave-Browser\Application\brave.exe`,
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "AppData", "Local", "BraveSoftware", "Brave-Browser", "Application", "brave.exe"))
	}
	return paths
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runCommand(cmd command) error {
	process := exec.Command(cmd.name, cmd.args...)
	if cmd.wait {
		return process.Run()
	}
	if err := process.Start(); err != nil {
		return err
	}
	// the browser keeps running; reap it in the background
	go func() { _ = process.Wait() }()
	return nil
}
