package helper

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/term"

	"github.com/sagan/aimeta/util"
)

// AskYesNoConfirm prints "<prompt>, are you sure?" to stderr and reads the answer from tty stdin.
// Only "yes" confirms; a non-tty stdin, an empty answer or "no" declines.
func AskYesNoConfirm(prompt string) bool {
	if prompt == "" {
		prompt = "Will do the action"
	}
	fmt.Fprintf(os.Stderr, "%s, are you sure? (yes/no): ", prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, `stdin is not a tty, aborting. Use "--force" flag to skip the prompt`)
		return false
	}
	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "yes":
			return true
		case "", "n", "no":
			return false
		}
		if err != nil {
			return false
		}
		fmt.Fprint(os.Stderr, "Respond with yes or no (or Ctrl+C to abort): ")
	}
}

// CheckOutput returns an error if output is an existing file and force is not set.
// "-" (stdout) always passes.
func CheckOutput(output string, force bool) error {
	if output == "-" {
		return nil
	}
	exists, err := util.FileExists(output)
	if err != nil {
		return fmt.Errorf("can't access output file %q: %w", output, err)
	}
	if exists && !force {
		return fmt.Errorf("output file %q exists", output)
	}
	return nil
}

// WriteOutput writes contents to output file atomically, or to stdout if output is "-".
func WriteOutput(stdout io.Writer, output string, contents io.Reader) (err error) {
	if output == "-" {
		_, err = io.Copy(stdout, contents)
		return err
	}
	return atomic.WriteFile(output, contents)
}

// GetNewFilePath returns join(dir, name) if no such file exists, otherwise the first
// free "<base> (N)<ext>" name in dir. On a file system access error it returns the
// last checked path along with the error.
func GetNewFilePath(dir string, name string) (fullpath string, err error) {
	if dir == "" && name == "" {
		return "", fmt.Errorf("empty dir & name")
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	fullpath = filepath.Join(dir, name)
	for i := 1; ; i++ {
		exists, err := util.FileExists(fullpath)
		if err != nil || !exists {
			return fullpath, err
		}
		fullpath = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
	}
}
