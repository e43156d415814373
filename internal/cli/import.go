package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/ipcboard/internal/config"
	"github.com/mrlokans/ipcboard/internal/importers"
)

// ImportCommand imports an IPC-2581 document from the local file system.
type ImportCommand struct {
	FilePath     string
	DatabasePath string
	Verbose      bool
	DryRun       bool

	out io.Writer
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{out: os.Stdout}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the IPC-2581 XML document (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite database")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print diagnostics and enable debug logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a board from an IPC-2581 document into the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file board.cvg\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file board.cvg -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run(ctx context.Context) error {
	if _, err := os.Stat(cmd.FilePath); os.IsNotExist(err) {
		return fmt.Errorf("document not found: %s", cmd.FilePath)
	}

	st, err := openStack(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Fprintf(cmd.out, "File: %s\n", cmd.FilePath)

	var result *importers.Result
	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "DRY RUN MODE - No changes will be made")
		f, err := os.Open(cmd.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()

		result, err = st.imports.Preview(ctx, f)
		if err != nil {
			return err
		}
	} else {
		outcome, err := st.imports.ImportFile(ctx, cmd.FilePath)
		if errors.Is(err, importers.ErrBoardExists) {
			fmt.Fprintf(cmd.out, "Board already imported, nothing written\n")
			return err
		}
		if err != nil {
			return err
		}
		result = outcome.Result
	}

	cmd.printResult(result)
	return nil
}

func (cmd *ImportCommand) printResult(result *importers.Result) {
	s := result.Stats
	fmt.Fprintf(cmd.out, "\nBoard: %s", result.BoardName)
	if result.BoardID != 0 {
		fmt.Fprintf(cmd.out, " (id %d)", result.BoardID)
	}
	fmt.Fprintln(cmd.out)
	fmt.Fprintf(cmd.out, "  Layers:      %d\n", s.Layers)
	fmt.Fprintf(cmd.out, "  Packages:    %d (%d pins)\n", s.Packages, s.Pins)
	fmt.Fprintf(cmd.out, "  Components:  %d (%d placed, %d from BOM)\n", s.Components, s.ComponentsFromPlacement, s.ComponentsFromBOM)
	fmt.Fprintf(cmd.out, "  Nets:        %d (%d netlist, %d pad stacks)\n", s.Nets, s.NetsFromNetList, s.NetsFromPadStacks)
	fmt.Fprintf(cmd.out, "  Net pins:    %d (%d already connected)\n", s.NetPins, s.NetPinsAlreadyConnected)
	fmt.Fprintf(cmd.out, "  Geometries:  %d\n", s.NetGeometries)

	if len(result.Diagnostics) == 0 {
		return
	}
	fmt.Fprintf(cmd.out, "\n%d references skipped\n", len(result.Diagnostics))
	if cmd.Verbose {
		enc := json.NewEncoder(cmd.out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result.Diagnostics)
	}
}
