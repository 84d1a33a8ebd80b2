package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// ExportCSV writes the full history as CSV, oldest entry first.
func (r *Recorder) ExportCSV(ctx context.Context, w io.Writer) error {
	entries, err := r.store.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"occurred_at", "action", "sensor_id", "sensor_name", "detail"}); err != nil {
		return fmt.Errorf("audit export: %w", err)
	}
	for _, entry := range entries {
		record := []string{
			entry.OccurredAt.Format(time.RFC3339),
			entry.Action,
			entry.SensorID,
			entry.SensorName,
			string(entry.Detail),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("audit export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("audit export: %w", err)
	}
	return nil
}
