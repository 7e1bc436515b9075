package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"jobboard/internal/errors"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// prompter reads answers line by line from one reader so buffered input is
// not lost between prompts.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	tty bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, tty: readerIsTTY(in)}
}

func (p *prompter) required(label string) (string, error) {
	value, err := p.optional(label)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", errors.Newf("%s is required", label)
	}
	return value, nil
}

func (p *prompter) optional(label string) (string, error) {
	if !p.tty {
		return "", nil
	}
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readerIsTTY(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
