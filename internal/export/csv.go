package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"GBMForecast/internal/model"
)

// WriteCSV writes one row per time step and one column per path. The header
// row holds the path indices.
func WriteCSV(w io.Writer, ens *model.PathEnsemble) error {
	if ens.Paths() == 0 {
		return errors.New("export: empty ensemble")
	}
	cw := csv.NewWriter(w)

	record := make([]string, ens.Paths())
	for i := range record {
		record[i] = strconv.Itoa(i)
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for step := 0; step < ens.Steps(); step++ {
		for p := range record {
			record[p] = strconv.FormatFloat(ens.At(step, p), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write step %d: %w", step, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the ensemble to path, replacing any existing file.
func SaveCSV(path string, ens *model.PathEnsemble) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, ens); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
