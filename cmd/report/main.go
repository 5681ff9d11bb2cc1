package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/AngelCh415/studio-metrics/internal/config"
	"github.com/AngelCh415/studio-metrics/internal/engine"
	"github.com/AngelCh415/studio-metrics/internal/export"
	"github.com/AngelCh415/studio-metrics/internal/ingest"
	"github.com/AngelCh415/studio-metrics/internal/models"
)

func main() {
	newPath := flag.String("new", "", "new visitors CSV export")
	bookingsPath := flag.String("bookings", "", "bookings CSV export")
	salesPath := flag.String("sales", "", "payments CSV export (optional)")
	outDir := flag.String("out", "reports", "output folder")
	format := flag.String("format", "json", "json or xlsx")
	rulesPath := flag.String("rules", "", "YAML rules file (defaults to RULES_FILE)")
	quiet := flag.Bool("q", false, "no progress output")
	flag.Parse()

	cfg := config.FromEnv()
	if *rulesPath != "" {
		cfg.RulesFile = *rulesPath
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := run(cfg, logger, *newPath, *bookingsPath, *salesPath, *outDir, *format, *quiet); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, newPath, bookingsPath, salesPath, outDir, format string, quiet bool) error {
	if format != "json" && format != "xlsx" {
		return fmt.Errorf("unknown format %q", format)
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	// flags already say what each file is, so give them names that classify as such
	inputs := []struct{ name, path string }{
		{"new_visitors.csv", newPath},
		{"bookings.csv", bookingsPath},
		{"payments.csv", salesPath},
	}
	var files []ingest.File
	for _, in := range inputs {
		if in.path == "" {
			continue
		}
		data, err := os.ReadFile(in.path)
		if err != nil {
			return err
		}
		logger.Debug("read export", slog.String("file", in.path), slog.Int("bytes", len(data)))
		files = append(files, ingest.File{Name: in.name, Data: data})
	}
	b, err := ingest.Assemble(files)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progress engine.ProgressReporter = engine.Discard
	if !quiet {
		progress = engine.ProgressFunc(func(p engine.Progress) {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", p.Percent, p.Step)
		})
	}
	res, err := engine.New(rules, logger).Run(ctx, b.Input, progress)
	if err != nil {
		return err
	}

	name := export.TimestampedFilename(outDir, "studio_metrics", time.Now(), format)
	err = export.ToFile(name, func(w io.Writer) error {
		if format == "xlsx" {
			return export.WriteWorkbook(w, res)
		}
		return export.WriteJSON(w, res)
	})
	if err != nil {
		return err
	}
	printSummary(res.Summary, name)
	return nil
}

func printSummary(s models.Summary, path string) {
	fmt.Printf("groups=%d studios=%d excluded=%d unlinked=%d undated=%d failed=%d\n",
		s.TeacherGroups, s.Studios, s.ExcludedClients, s.UnlinkedClients, s.UndatedClients, s.FailedGroups)
	fmt.Println("exported to:", path)
}
