package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dfryer1193/keta/catalog/application"
	"github.com/dfryer1193/keta/catalog/domain"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func exportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every image as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" || output == "-" {
				return a.export(cmd, cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}

			return a.exportAndClose(cmd, f, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	return cmd
}

// exportAndClose writes the export to out and closes it. A failed close
// fails the export, since buffered data may not have reached the file.
func (a *app) exportAndClose(cmd *cobra.Command, out io.WriteCloser, name string) error {
	if err := a.export(cmd, out); err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}

func (a *app) export(cmd *cobra.Command, out io.Writer) error {
	repo, database, err := a.openRepository()
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	images, err := application.NewTransferService(repo).Export(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(images)
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Store every image of a JSON array, replacing records with the same id",
		Long: `Store every image of a JSON array produced by export.

Reads standard input when no file or - is given. Import stops at the first
image that cannot be stored; images before it stay stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			return a.importImages(cmd, in)
		},
	}
}

func (a *app) importImages(cmd *cobra.Command, in io.Reader) error {
	var images []domain.Image
	if err := json.NewDecoder(in).Decode(&images); err != nil {
		return fmt.Errorf("failed to decode images: %w", err)
	}

	repo, database, err := a.openRepository()
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	n, err := application.NewTransferService(repo).Import(cmd.Context(), images)
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d images\n", n, len(images))
	return err
}
