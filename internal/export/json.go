package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// TimestampedFilename builds dir/name_YYYYMMDD_HHMMSS.ext.
func TimestampedFilename(dir, name string, now time.Time, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", name, now.Format("20060102_150405"), ext))
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ToFile creates filename, including missing parent folders, and hands it to write.
func ToFile(filename string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
