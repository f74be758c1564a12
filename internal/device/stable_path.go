package device

import (
	"os"
	"path/filepath"
	"strings"
)

// inputLinkDirs holds the udev symlinks that survive reconnects and reboots,
// most specific first
var inputLinkDirs = []string{"/dev/input/by-id", "/dev/input/by-path"}

// StablePath returns a udev link to the event device at eventPath, so a
// configured evdev:// source keeps working when the event number changes.
// It returns eventPath itself when no link exists.
func StablePath(eventPath string) string {
	return stablePath(eventPath, inputLinkDirs)
}

func stablePath(eventPath string, dirs []string) string {
	eventName := filepath.Base(eventPath)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.Contains(entry.Name(), "event") {
				continue
			}
			link := filepath.Join(dir, entry.Name())
			if target, err := os.Readlink(link); err == nil && filepath.Base(target) == eventName {
				return link
			}
		}
	}
	return eventPath
}
