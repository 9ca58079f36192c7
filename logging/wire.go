package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const maxLineLength = 1000

const (
	Client = "C"
	Server = "S"
)

var escaper = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`)

// WriteLine writes one line of wire traffic as "leader[id]: line". Nothing is written if w is nil.
func WriteLine(w io.Writer, leader, id string, line []byte) {
	if w == nil {
		return
	}

	text := escaper.Replace(strings.TrimSpace(string(line)))

	if len(text) > maxLineLength {
		text = text[:maxLineLength] + "..."
	}

	if _, err := fmt.Fprintf(w, "%v[%v]: %v\n", leader, id, text); err != nil {
		logrus.WithError(err).Warn("Failed to write wire log")
	}
}
