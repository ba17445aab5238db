package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/plantshelf/internal/common"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// promptText prints prompt and reads one trimmed line. If EOF follows some
// input, the partial line is returned.
func (a *App) promptText(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt+": "); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// textOr returns v, or prompts for it when v is empty.
func (a *App) textOr(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return a.promptText(prompt)
}

// promptPassword reads a password from the terminal without echo.
func (a *App) promptPassword(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// confirm asks a yes/no question; only "y" and "yes" agree.
func (a *App) confirm(question string) (bool, error) {
	ans, err := a.promptText(question + " [y/N]")
	if err != nil {
		return false, err
	}
	ans = strings.ToLower(ans)
	return ans == "y" || ans == "yes", nil
}
