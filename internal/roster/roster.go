// Package roster reads participant code names and writes login credentials.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/alienxp03/warrant/internal/core"
)

// ReadNames returns the first column of every non-blank row.
func ReadNames(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var names []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// WriteCredentials writes one name,key row per participant.
func WriteCredentials(w io.Writer, people []*core.Participant) error {
	cw := csv.NewWriter(w)
	for _, p := range people {
		if err := cw.Write([]string{p.Name, p.Key}); err != nil {
			return fmt.Errorf("failed to write credentials: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatus writes one name,key,login,approved row per participant,
// without a header. A missing login is written as None and approval as
// True or False.
func WriteStatus(w io.Writer, people []*core.Participant) error {
	cw := csv.NewWriter(w)
	for _, p := range people {
		login := "None"
		if p.LoggedInAt != nil {
			login = core.FormatStamp(*p.LoggedInAt)
		}
		approved := "False"
		if p.Approved {
			approved = "True"
		}
		if err := cw.Write([]string{p.Name, p.Key, login, approved}); err != nil {
			return fmt.Errorf("failed to write roster status: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
