package player

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func WithValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func WithMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// lineConn is a connection whose reads are buffered once for its whole
// lifetime, so prompts never lose input read ahead by an earlier prompt.
type lineConn struct {
	*bufio.Reader
	io.Writer
}

func newLineConn(rw io.ReadWriter) *lineConn {
	if lc, ok := rw.(*lineConn); ok {
		return lc
	}
	return &lineConn{Reader: bufio.NewReader(rw), Writer: rw}
}

// ReadLine returns the next line without its line ending.
func (c *lineConn) ReadLine() (string, error) {
	line, err := c.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func Prompt(rw io.ReadWriter, prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	conn := newLineConn(rw)

	tries := 0
	for {
		if _, err := io.WriteString(conn, prompt); err != nil {
			return "", err
		}

		input, err := conn.ReadLine()
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				io.WriteString(conn, msg)

				tries++
				if config.tries > 0 && config.tries == tries {
					io.WriteString(conn, "too many tries\n")
					return "", fmt.Errorf("too many tries")
				}

				continue
			}
		}

		return input, nil
	}
}

func PromptYN(rw io.ReadWriter, prompt string) (bool, error) {
	str, err := Prompt(rw, prompt, WithValidator(
		func(str string) (bool, string) {
			switch strings.ToLower(str) {
			case "y", "yes", "n", "no":
				return true, ""
			default:
				return false, "enter 'yes' or 'no'\n"
			}
		},
	))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(str) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
