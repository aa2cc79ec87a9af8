package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/objfile"
	"github.com/oisee/rvasm/pkg/parser"
)

func main() {
	var inputPath, outputPath string

	rootCmd := &cobra.Command{
		Use:   "asm",
		Short: "RISC-V RV64GC assembler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("-c/--compile is required")
			}
			if outputPath == "" {
				return errors.New("-o/--output is required")
			}
			return assemble(inputPath, outputPath)
		},
	}
	rootCmd.Flags().StringVarP(&inputPath, "compile", "c", "", "assembly source file to compile")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output ELF object path")

	if err := rootCmd.Execute(); err != nil {
		printDiagnostic(inputPath, err)
		os.Exit(1)
	}
}

// assemble runs the full pipeline: tokenize + parse src into a Unit,
// resolve relocations, then lay out and write the ELF object.
func assemble(inputPath, outputPath string) error {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return asmerr.NoPos(asmerr.IO, "reading %s: %v", inputPath, err)
	}

	unit := parser.NewUnit()
	p, err := parser.New(string(src), unit)
	if err != nil {
		return err
	}
	if err := p.Parse(); err != nil {
		return err
	}
	relocs, err := unit.Finish()
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return asmerr.NoPos(asmerr.IO, "creating %s: %v", outputPath, err)
	}
	defer out.Close()

	if err := objfile.Write(out, objfile.Input{
		Instructions: unit.Instructions(),
		Data:         unit.Data,
		BssSize:      unit.Bss.Size(),
		Globals:      globalSymbols(unit),
		Labels:       labelSymbols(unit),
		Relocations:  relocs,
	}); err != nil {
		return asmerr.NoPos(asmerr.IO, "writing %s: %v", outputPath, err)
	}
	return nil
}

func globalSymbols(unit *parser.Unit) []objfile.GlobalSymbol {
	names := unit.Tracker.GlobalOrder()
	out := make([]objfile.GlobalSymbol, 0, len(names))
	for _, name := range names {
		sec, _ := unit.Tracker.LookupGlobal(name)
		out = append(out, objfile.GlobalSymbol{Name: name, Sec: sec})
	}
	return out
}

func labelSymbols(unit *parser.Unit) []objfile.LabelSymbol {
	names := unit.Tracker.LabelOrder()
	out := make([]objfile.LabelSymbol, 0, len(names))
	for _, name := range names {
		off, _ := unit.Tracker.LookupLabel(name)
		out = append(out, objfile.LabelSymbol{Name: name, Offset: off})
	}
	return out
}

// printDiagnostic prints a red "error: " prefix (color.NoColor auto-detects
// a non-terminal stderr) followed by err; a positioned *asmerr.Error is
// written as "file:line:col: kind: message".
func printDiagnostic(path string, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(os.Stderr, "error: ")
	var ae *asmerr.Error
	if errors.As(err, &ae) && (ae.Pos.Line != 0 || ae.Pos.Col != 0) {
		fmt.Fprintf(os.Stderr, "%s:%s\n", path, ae.Error())
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}
