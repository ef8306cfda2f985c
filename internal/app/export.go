package app

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"sustainability-quiz-service/internal/domain"
)

const (
	// ExportFilename is the attachment name of the CSV export.
	ExportFilename = "sustainability-quiz-export.csv"

	exportTimeLayout = "2006-01-02T15:04:05.000Z"
	exportMissing    = "N/A"
	exportCompleted  = "Vollständig"
	exportAbandoned  = "Abgebrochen"
)

var exportHeader = []string{"Zeitstempel", "Alter", "Geschlecht", "Score", "Status"}

// ExportCSV renders one row per session: completion time, age, gender, score and status.
func ExportCSV(rows []domain.RecentResponse) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		stamp, status := exportMissing, exportAbandoned
		if r.CompletedAt != nil {
			stamp = r.CompletedAt.UTC().Format(exportTimeLayout)
		}
		if r.IsCompleted {
			status = exportCompleted
		}
		rec := []string{
			stamp,
			strconv.Itoa(r.Age),
			r.Gender,
			strconv.Itoa(r.Score) + "%",
			status,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
