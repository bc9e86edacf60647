package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"
)

// writeCSV sends rows as a downloadable CSV file. A UTF-8 byte order mark
// is written first so spreadsheet programs keep the accents.
func writeCSV(w http.ResponseWriter, name string, header []string, rows [][]string) error {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
