// Package speech plays synthesized audio through an external command-line
// player.
//
// Audio is staged in a temporary file that exists only for the duration of
// playback and is removed on every exit path, including player failure.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// tempPattern names staged audio files.
const tempPattern = "gtranslate-speech-*.mp3"

// ErrNoPlayer is returned when no audio player could be found.
var ErrNoPlayer = errors.New("no audio player found")

// Player plays an audio file.
type Player interface {
	Play(ctx context.Context, path string) error
}

// CommandPlayer runs an external program with the audio path appended as the
// last argument.
type CommandPlayer struct {
	Name string
	Args []string
}

// Play runs the player and waits for it to exit.
func (p CommandPlayer) Play(ctx context.Context, path string) error {
	if p.Name == "" {
		return ErrNoPlayer
	}
	args := append(append([]string{}, p.Args...), path)
	cmd := exec.CommandContext(ctx, p.Name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", p.Name, err, truncate(string(out), 300))
		}
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	return nil
}

// knownPlayers lists players tried by DetectPlayer, in order, with the
// arguments that make them play once and exit without a window.
var knownPlayers = []CommandPlayer{
	{Name: "afplay"},
	{Name: "mpg123", Args: []string{"-q"}},
	{Name: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{Name: "mpv", Args: []string{"--no-video", "--really-quiet"}},
	{Name: "play", Args: []string{"-q"}},
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// DetectPlayer returns the first known player available on PATH.
// afplay is preferred on macOS, where it ships with the system.
func DetectPlayer() (CommandPlayer, error) {
	for _, p := range knownPlayers {
		if p.Name == "afplay" && runtime.GOOS != "darwin" {
			continue
		}
		if _, err := lookPath(p.Name); err == nil {
			return p, nil
		}
	}
	return CommandPlayer{}, ErrNoPlayer
}

// NewPlayer returns a CommandPlayer for name, or the detected player when
// name is empty.
func NewPlayer(name string, args []string) (CommandPlayer, error) {
	if name == "" {
		return DetectPlayer()
	}
	if _, err := lookPath(name); err != nil {
		return CommandPlayer{}, fmt.Errorf("audio player %q: %w", name, err)
	}
	return CommandPlayer{Name: name, Args: args}, nil
}

// Play writes audio to a temporary file, hands it to player and removes the
// file afterwards whatever the outcome.
func Play(ctx context.Context, audio []byte, player Player) (err error) {
	if player == nil {
		return ErrNoPlayer
	}

	f, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = fmt.Errorf("removing %s: %w", path, rmErr)
		}
	}()

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	if err := player.Play(ctx, path); err != nil {
		return fmt.Errorf("playing audio: %w", err)
	}
	return nil
}

// Save writes audio to path, creating parent directories as needed.
func Save(path string, audio []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
