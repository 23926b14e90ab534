package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/store"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "State document commands",
}

var stateExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the state document as JSON (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStateExport,
}

var stateImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the state document with a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateImport,
}

func init() {
	stateCmd.AddCommand(stateExportCmd, stateImportCmd)
	rootCmd.AddCommand(stateCmd)
}

func runStateExport(cmd *cobra.Command, args []string) error {
	st, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	var out io.Writer = os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return exportState(st, out)
}

func runStateImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	s, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := importState(s, f)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d lists, %d templates, %d campaigns\n", len(st.Lists), len(st.Templates), len(st.Campaigns))
	return nil
}

// exportState writes the full document. The API key is included so an export
// can be restored as is.
func exportState(st *store.Store, w io.Writer) error {
	snapshot := st.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&snapshot); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return nil
}

// importState replaces the document with the decoded one
func importState(st *store.Store, r io.Reader) (models.State, error) {
	var doc models.State
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, fmt.Errorf("failed to decode state: %w", err)
	}
	st.Replace(doc)
	return st.Snapshot(), nil
}
