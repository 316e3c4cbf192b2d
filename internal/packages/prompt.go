package packages

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// DefaultPromptAttempts is how many invalid answers a LinePrompter accepts.
const DefaultPromptAttempts = 3

// Prompter asks the user to pick one of a closed set of answers.
type Prompter interface {
	Choose(question string, valid []string) (string, error)
}

// LinePrompter reads one answer per line.
type LinePrompter struct {
	in       *bufio.Reader
	out      io.Writer
	attempts int
}

// NewLinePrompter creates a prompter reading from in and writing questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:       bufio.NewReader(in),
		out:      out,
		attempts: DefaultPromptAttempts,
	}
}

// Choose implements Prompter. End of input returns ErrNoChoice; too many
// answers outside valid return ErrInvalidChoice.
func (p *LinePrompter) Choose(question string, valid []string) (string, error) {
	for range p.attempts {
		fmt.Fprint(p.out, question)

		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if slices.Contains(valid, answer) {
			return answer, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out)
				return "", ErrNoChoice
			}
			return "", fmt.Errorf("read choice: %w", err)
		}
		fmt.Fprintf(p.out, "Please answer %s.\n", strings.Join(valid, " or "))
	}
	return "", ErrInvalidChoice
}
