package export

import (
	"io"

	"github.com/alienxp03/warrant/internal/roster"
)

// CSVExporter exports the session roster with login status.
type CSVExporter struct{}

// Export writes name,key,login,approved for every participant.
func (e *CSVExporter) Export(b *Bundle, w io.Writer) error {
	return roster.WriteStatus(w, b.Participants)
}

// FileExtension returns the file extension for CSV.
func (e *CSVExporter) FileExtension() string {
	return "csv"
}
