// Package notify sends reminders to the desktop. The TUI banner is always
// shown; these notifiers cover the case where the terminal is not focused.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/gen2brain/beeep"
)

type Notification struct {
	Title string
	Body  string
}

type Notifier interface {
	Send(Notification) error
}

type Noop struct{}

func (Noop) Send(Notification) error { return nil }

// Beeep uses the platform notification service via gen2brain/beeep.
type Beeep struct{}

func (Beeep) Send(n Notification) error {
	return beeep.Notify(n.Title, n.Body, "")
}

// Exec shells out to notify-send or osascript. Kept as a fallback for
// environments where the dbus/toast path is unavailable.
type Exec struct{}

func (Exec) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Desktop tries beeep first and falls back to shelling out.
type Desktop struct {
	primary  Notifier
	fallback Notifier
}

func NewDesktop() Desktop {
	return Desktop{primary: Beeep{}, fallback: Exec{}}
}

func (d Desktop) Send(n Notification) error {
	if err := d.primary.Send(n); err != nil {
		return d.fallback.Send(n)
	}
	return nil
}
