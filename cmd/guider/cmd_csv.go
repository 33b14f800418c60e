package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neexbeast/travelguider/internal/backend"
)

func newCSVCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Manage the places and entry-fees CSV datasets",
	}
	cmd.AddCommand(newCSVStatusCmd(a), newCSVWaitCmd(a), newCSVImportCmd(a))
	return cmd
}

func csvTypeArg(args []string) (backend.CSVType, error) {
	t := backend.CSVType(args[0])
	if !t.Valid() {
		return "", fmt.Errorf("unknown dataset %q (want %s or %s)", args[0], backend.CSVPlaces, backend.CSVEntryFees)
	}
	return t, nil
}

func (a *app) pollConfig() backend.PollConfig {
	return backend.PollConfig{Attempts: a.cfg.CSV.PollAttempts, Delay: a.cfg.CSV.PollDelay}
}

func (a *app) printStatus(t backend.CSVType, st *backend.CSVStatus) error {
	if !st.Exists {
		fmt.Fprintf(a.out, "%s: no CSV file stored\n", t)
		return nil
	}
	fmt.Fprintf(a.out, "%s: CSV file present\n", t)
	if st.Info == nil {
		return nil
	}
	b, err := yaml.Marshal(st.Info)
	if err != nil {
		return fmt.Errorf("formatting csv info: %w", err)
	}
	_, err = a.out.Write(b)
	return err
}

func newCSVStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "status <places|entry-fees>",
		Short:     "Show whether a dataset has a stored CSV file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(backend.CSVPlaces), string(backend.CSVEntryFees)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := csvTypeArg(args)
			if err != nil {
				return err
			}
			st, err := a.client.CSVStatus(cmd.Context(), t)
			if err != nil {
				return err
			}
			return a.printStatus(t, st)
		},
	}
}

func newCSVWaitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <places|entry-fees>",
		Short: "Poll until a dataset's CSV file is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := csvTypeArg(args)
			if err != nil {
				return err
			}
			st, err := a.client.WaitForCSV(cmd.Context(), t, a.pollConfig())
			if err != nil {
				return err
			}
			return a.printStatus(t, st)
		},
	}
}

func newCSVImportCmd(a *app) *cobra.Command {
	var file string
	var wait bool

	cmd := &cobra.Command{
		Use:   "import <places|entry-fees>",
		Short: "Import a dataset's CSV into the database, optionally uploading it first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := csvTypeArg(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("opening %s: %w", file, err)
				}
				defer f.Close()
				if _, err := a.client.UploadCSV(ctx, t, filepath.Base(file), f); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Uploaded %s\n", filepath.Base(file))
			}

			if wait {
				if _, err := a.client.WaitForCSV(ctx, t, a.pollConfig()); err != nil {
					return err
				}
			}

			msg, err := a.client.ImportCSV(ctx, t)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = fmt.Sprintf("Imported %s", t)
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to upload before importing")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the stored file before importing")
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show admin counters for places, buses and trains",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			writeDashboardTable(a.out, d)
			return nil
		},
	}
}
