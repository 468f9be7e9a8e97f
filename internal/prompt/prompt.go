// Package prompt asks the operator, line by line, for whatever connection
// parameters were not supplied up front.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/koustreak/metadump/internal/config"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
	"golang.org/x/term"
)

// DefaultHost is offered when no host was supplied.
const DefaultHost = "localhost"

// Prompter reads answers from one input and writes questions to one output.
// An empty answer accepts the offered default.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// readSecret reads a line without echo. Nil means read a plain line.
	readSecret func() (string, error)
}

// New returns a Prompter over in and out. When in is a terminal, secrets
// are read without echo.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(p.out)
			return string(b), err
		}
	}
	return p
}

// Line asks question and returns the trimmed answer, or def when the
// answer is empty.
func (p *Prompter) Line(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Secret asks question without echoing the answer when possible.
func (p *Prompter) Secret(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	if p.readSecret != nil {
		s, err := p.readSecret()
		if err != nil {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "failed to read password", err)
		}
		return s, nil
	}
	return p.readLine()
}

// Choice lists options numbered from 1 and returns the index picked.
// The operator may answer with the number or the option itself.
func (p *Prompter) Choice(question string, options []string, def int) (int, error) {
	fmt.Fprintf(p.out, "%s\n", question)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}

	for {
		answer, err := p.Line("Choice", strconv.Itoa(def+1))
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		for i, o := range options {
			if strings.EqualFold(answer, o) {
				return i, nil
			}
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "failed to read input", err)
		}
		// A final line without a newline still counts.
		if line == "" {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "input closed before all parameters were given", err)
		}
	}
	return strings.TrimSpace(line), nil
}

// Collector fills in the connection parameters Known lacks by prompting.
type Collector struct {
	Known  config.Partial
	prompt *Prompter
}

// NewCollector returns a Collector that prompts on in and out.
func NewCollector(known config.Partial, in io.Reader, out io.Writer) *Collector {
	return &Collector{Known: known, prompt: New(in, out)}
}

// Collect asks, in order, for engine, host, user, password, database name
// and port, skipping every value already known.
func (c *Collector) Collect(ctx context.Context) (*database.Config, error) {
	p := c.Known

	steps := []func() error{
		func() error {
			if p.Engine != "" {
				return nil
			}
			labels := make([]string, len(database.Engines))
			for i, e := range database.Engines {
				labels[i] = e.Label()
			}
			i, err := c.prompt.Choice("Select your database type:", labels, 0)
			if err != nil {
				return err
			}
			p.Engine = database.Engines[i]
			return nil
		},
		func() (err error) {
			if p.Host == "" {
				p.Host, err = c.prompt.Line("Enter your database host", DefaultHost)
			}
			return err
		},
		func() (err error) {
			if p.User == "" {
				p.User, err = c.prompt.Line("Enter your database user", "")
			}
			return err
		},
		func() error {
			if p.Password != nil {
				return nil
			}
			pw, err := c.prompt.Secret("Enter your database password")
			p.Password = &pw
			return err
		},
		func() error {
			for p.Database == "" {
				name, err := c.prompt.Line("Enter your database name", "")
				if err != nil {
					return err
				}
				p.Database = name
			}
			return nil
		},
		func() error {
			for p.Port == 0 {
				answer, err := c.prompt.Line("Enter your database port", strconv.Itoa(p.Engine.DefaultPort()))
				if err != nil {
					return err
				}
				port, err := strconv.Atoi(answer)
				if err != nil || port <= 0 || port > 65535 {
					fmt.Fprintf(c.prompt.out, "Invalid port %q.\n", answer)
					continue
				}
				p.Port = port
			}
			return nil
		},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrKindTimeout, "prompt cancelled", err)
		}
		if err := step(); err != nil {
			return nil, err
		}
	}

	return p.Config()
}
