package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// linePrompter asks questions on a terminal, one answer per line. End of
// input counts as a cancelled prompt.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) readLine() (string, bool, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", false, nil
			}
			return strings.TrimRight(line, "\r\n"), true, nil
		}
		return "", false, err
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

func (p *linePrompter) AskString(title, prompt string) (string, bool, error) {
	fmt.Fprintf(p.out, "[%s] %s ", title, prompt)
	return p.readLine()
}

func (p *linePrompter) Confirm(title, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "[%s] %s [y/N] ", title, prompt)
	answer, _, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// PickFiles reads space separated paths.
func (p *linePrompter) PickFiles(title string) ([]string, error) {
	fmt.Fprintf(p.out, "[%s] Paths, separated by spaces: ", title)
	line, _, err := p.readLine()
	if err != nil {
		return nil, err
	}
	return strings.Fields(line), nil
}

func (p *linePrompter) PickDir(title string) (string, error) {
	fmt.Fprintf(p.out, "[%s] Directory: ", title)
	line, _, err := p.readLine()
	return strings.TrimSpace(line), err
}
