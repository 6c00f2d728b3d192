// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/ward-admin/cliparse"
	"github.com/danielhkuo/ward-admin/models"
	"github.com/danielhkuo/ward-admin/screen"
	"github.com/danielhkuo/ward-admin/store"
)

type fielder interface {
	Fields() models.Fields
}

// rowDecoders maps a screen to the typed row its CSV headers decode into
var rowDecoders = map[string]func(*csvutil.Decoder) ([]models.Fields, error){
	"members":    decodeRows[models.Member],
	"wards":      decodeRows[models.Ward],
	"complaints": decodeRows[models.ComplaintTemplate],
	"centers":    decodeRows[models.Center],
	"mandis":     decodeRows[models.Mandi],
}

func decodeRows[T fielder](dec *csvutil.Decoder) ([]models.Fields, error) {
	var rows []T
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}
	out := make([]models.Fields, len(rows))
	for i, row := range rows {
		out[i] = row.Fields()
	}
	return out, nil
}

func newImportCommand() *cobra.Command {
	var screenName, csvFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import CSV rows into a screen's collection",
		Long: `Each CSV row is submitted through the screen's add form, so required
fields, format checks and uniqueness apply exactly as in the dashboard.
Rows that fail validation are skipped and logged. The store is selected
with the same environment variables as serve.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliparse.ParseFlags(nil)
			if err != nil {
				return err
			}

			f, err := os.Open(csvFile)
			if err != nil {
				return fmt.Errorf("failed to open CSV file: %w", err)
			}
			defer f.Close()

			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			added, skipped, err := importCSV(cmd.Context(), s, screenName, f)
			if err != nil {
				return err
			}
			if skipped > 0 {
				slog.Warn("some rows were skipped, check the CSV headers and values", "skipped", skipped)
			}
			slog.Info("import finished", "screen", screenName, "added", added, "skipped", skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&screenName, "screen", "s", "", "Screen to import into (members, wards, complaints, centers, mandis)")
	cmd.Flags().StringVarP(&csvFile, "csv", "c", "", "CSV file to import")
	cmd.MarkFlagRequired("screen")
	cmd.MarkFlagRequired("csv")
	return cmd
}

// importCSV submits every row of r through a fresh add form on the named
// screen. Validation failures are counted as skipped; a store failure stops
// the import.
func importCSV(ctx context.Context, s store.Store, screenName string, r io.Reader) (added, skipped int, err error) {
	spec, ok := screen.Lookup(screenName)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", screen.ErrUnknownScreen, screenName)
	}
	if spec.ReadOnly {
		return 0, 0, fmt.Errorf("%s: %w", spec.Title, screen.ErrReadOnly)
	}
	decode, ok := rowDecoders[screenName]
	if !ok {
		return 0, 0, fmt.Errorf("screen %q does not support CSV import", screenName)
	}

	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create CSV decoder: %w", err)
	}
	rows, err := decode(dec)
	if err != nil {
		return 0, 0, err
	}
	slog.Info("parsed CSV", "screen", screenName, "rows", len(rows))

	sc := screen.New(spec, s)
	for i, fields := range rows {
		if err := sc.Open(screen.ModeAdd, models.Record{Fields: fields}); err != nil {
			return added, skipped, err
		}

		_, err := sc.Submit(ctx)
		var verr *screen.ValidationError
		switch {
		case errors.As(err, &verr):
			// Header row is line 1
			slog.Warn("skipping row", "line", i+2, "error", verr.Error())
			sc.Cancel()
			skipped++
			continue
		case err != nil:
			return added, skipped, err
		}

		added++
		if added%100 == 0 {
			slog.Info("importing", "added", added)
		}
	}
	return added, skipped, nil
}
