package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-scripts/boardcrawl/internal/session"
)

// ErrInputClosed means the operator's input ended before a confirmation.
var ErrInputClosed = errors.New("input closed before login was confirmed")

// Prompt asks the operator to log in through the browser window and waits
// for Enter.
type Prompt struct {
	in    io.Reader
	out   io.Writer
	title string
	lines []string
}

var _ session.Confirmer = (*Prompt)(nil)

// NewPrompt creates a prompt reading from in and printing to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:    in,
		out:   out,
		title: "Login required",
		lines: []string{
			"Log in to the board in the opened browser window.",
			"Press Enter here once the login has finished.",
		},
	}
}

// Confirm prints the banner and blocks until a line is read or ctx ends.
// The read continues in the background after cancellation since an
// io.Reader cannot be interrupted.
func (p *Prompt) Confirm(ctx context.Context) error {
	fmt.Fprintln(p.out, p.banner())

	done := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		switch {
		case err == nil:
			done <- nil
		case errors.Is(err, io.EOF) && line != "":
			done <- nil
		case errors.Is(err, io.EOF):
			done <- ErrInputClosed
		default:
			done <- fmt.Errorf("read confirmation: %w", err)
		}
	}()

	select {
	case err := <-done:
		if err == nil {
			fmt.Fprintln(p.out, infoStyle.Render("Login confirmed, continuing."))
		}
		return err
	case <-ctx.Done():
		fmt.Fprintln(p.out, warningStyle.Render("Stopped waiting for login."))
		return ctx.Err()
	}
}

func (p *Prompt) banner() string {
	body := titleStyle.Render(p.title) + "\n" + strings.Join(p.lines, "\n")
	return borderStyle.Render(body)
}
