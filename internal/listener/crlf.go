package listener

import (
	"bytes"
	"io"
)

// lineEndings translates between the network's CR LF line endings and the
// plain LF the game works with. Telnet clients send CR LF, ssh clients
// without a pty send a bare CR.
type lineEndings struct {
	rw io.ReadWriter
	// afterCR is set when the last byte read was a CR, so an LF starting the
	// next read belongs to the same line ending.
	afterCR bool
}

func newLineEndings(rw io.ReadWriter) *lineEndings {
	return &lineEndings{rw: rw}
}

func (c *lineEndings) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	out := p[:0]
	for _, b := range p[:n] {
		switch {
		case b == '\n' && c.afterCR:
			c.afterCR = false
		case b == '\r':
			out = append(out, '\n')
			c.afterCR = true
		default:
			out = append(out, b)
			c.afterCR = false
		}
	}
	return len(out), err
}

// Write reports len(p) on success so callers don't see the added CRs.
func (c *lineEndings) Write(p []byte) (int, error) {
	if _, err := c.rw.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
