// Package exe contains helpers to run external binaries in tests
package exe

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

// Run runs the given binary in dir and returns its trimmed stdout.
// If the command fails, stderr is used as error message
func Run(dir, name string, arg ...string) (string, error) {
	cmd := exec.Command(name, arg...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	out := strings.TrimSuffix(stdout.String(), "\n")
	if err != nil && stderr.Len() > 0 {
		return out, errors.New(strings.TrimSuffix(stderr.String(), "\n"))
	}
	return out, err
}
