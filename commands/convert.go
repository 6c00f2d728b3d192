// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/ward-admin/calendar"
	"github.com/danielhkuo/ward-admin/sheet"
)

type convertOptions struct {
	output   string
	format   string
	columns  []string
	timeZone string
	fontFile string
}

func newConvertCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <file.ics>",
		Short: "Convert a calendar file to xlsx or pdf",
		Long: `Flattens the events of an .ics file into the calendar table and writes it
as a spreadsheet or PDF with the Total Hours row, without starting the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: calendar_events.<format>)")
	cmd.Flags().StringVar(&opts.format, "format", "", "xlsx or pdf (default: from the output extension, else xlsx)")
	cmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "Columns to include, e.g. --columns summary,\"start date\"")
	cmd.Flags().StringVar(&opts.timeZone, "tz", "Local", "Time zone for dates and times")
	cmd.Flags().StringVar(&opts.fontFile, "pdf-font", os.Getenv("PDF_FONT_FILE"), "UTF-8 TrueType font for PDF output")
	return cmd
}

func convert(input string, opts convertOptions) error {
	format, output, err := resolveOutput(opts.format, opts.output)
	if err != nil {
		return err
	}

	loc := time.Local
	if opts.timeZone != "" && opts.timeZone != "Local" {
		if loc, err = time.LoadLocation(opts.timeZone); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", opts.timeZone, err)
		}
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	events, err := calendar.ParseICS(f)
	if err != nil {
		return err
	}
	rows, err := calendar.FlattenAll(events, loc)
	if err != nil {
		return err
	}

	t := calendar.NewTable(rows, loc)
	if len(opts.columns) > 0 {
		if err := t.SetVisible(opts.columns); err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(t.Headers(), ", "))
		}
	}

	visible, all, total := t.Snapshot()
	grid, err := sheet.NewGrid(visible, all, total)
	if err != nil {
		return err
	}

	var write func(io.Writer, sheet.Grid) error = sheet.WriteXLSX
	if format == "pdf" {
		font, err := sheet.LoadPDFFont(opts.fontFile)
		if err != nil {
			return err
		}
		write = func(w io.Writer, g sheet.Grid) error {
			return sheet.WritePDFWithFont(w, g, font)
		}
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(out, grid); err != nil {
		out.Close()
		os.Remove(output)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	size := "unknown size"
	if info, err := os.Stat(output); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	slog.Info("calendar converted", "events", len(all), "total_hours", total, "output", output, "size", size)
	return nil
}

// resolveOutput settles the format and file name from whichever was given
func resolveOutput(format, output string) (string, string, error) {
	format = strings.ToLower(format)
	if format == "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".pdf":
			format = "pdf"
		default:
			format = "xlsx"
		}
	}

	switch format {
	case "xlsx":
		if output == "" {
			output = sheet.XLSXFilename
		}
	case "pdf":
		if output == "" {
			output = sheet.PDFFilename
		}
	default:
		return "", "", fmt.Errorf("unsupported format %q (use xlsx or pdf)", format)
	}
	return format, output, nil
}
