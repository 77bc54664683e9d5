package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/debemdeboas/texpad/internal/config"
)

func main() {
	format := flag.String("format", "yaml", "Output format: yaml or toml")
	flag.Parse()

	// Create a config with defaults applied
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	data, err := config.Encode(cfg, *format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating config: %v\n", err)
		os.Exit(1)
	}

	// Add header comment
	header := "# texpad configuration example\n# Copy this file to texpad." + *format + " and customize as needed\n\n"
	output := header + string(data)

	// Write to file or stdout
	outputFile := "texpad.example." + *format
	if flag.NArg() > 0 {
		outputFile = flag.Arg(0)
	}

	if outputFile == "-" {
		fmt.Print(output)
	} else {
		err = os.WriteFile(outputFile, []byte(output), 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated example config: %s\n", outputFile)
	}
}
