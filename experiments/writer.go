package experiments

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Writer persists experiment output as CSV files in a timestamped
// subfolder.
type Writer struct {
	baseDir string
}

func NewWriter() (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join("experiments", "speedup", timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create experiment directory")
	}
	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) WriteRunRecords(records []RunRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Config.ID),
			strconv.Itoa(r.Config.Workers),
			strconv.Itoa(r.Config.BatchSize),
			strconv.Itoa(r.Repetition),
			r.Duration.String(),
			strconv.FormatFloat(r.SimsPerSec, 'f', 1, 64),
			strconv.Itoa(r.Simulations),
		})
	}
	header := []string{"config", "workers", "batch_size", "repetition", "duration", "sims_per_sec", "simulations"}
	return w.writeFile("runs.csv", header, rows)
}

func (w *Writer) WriteSummaries(summaries []Summary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.Config.ID),
			strconv.Itoa(s.Config.Workers),
			strconv.FormatFloat(s.MeanSeconds, 'f', 4, 64),
			strconv.FormatFloat(s.StdDevSeconds, 'f', 4, 64),
			strconv.FormatFloat(s.MeanSimsPerSec, 'f', 1, 64),
			strconv.FormatFloat(s.Speedup, 'f', 3, 64),
		})
	}
	header := []string{"config", "workers", "mean_seconds", "stddev_seconds", "mean_sims_per_sec", "speedup"}
	return w.writeFile("summary.csv", header, rows)
}

func (w *Writer) writeFile(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", name)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return errors.Wrapf(err, "failed to write %s header", name)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write %s row", name)
		}
	}
	return nil
}
