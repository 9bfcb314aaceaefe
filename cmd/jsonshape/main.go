// Command jsonshape infers a Rust data model from a corpus of JSON sample
// records.
//
// Usage:
//
//	jsonshape generate [options] <dir>...
//
// Options:
//
//	-config string   Path to a YAML config file (skip_comments, rename, adapter options)
//	-root string     Identifier for the top-level record (default "Root")
//	-out string      Output file path (default "model.rs")
//	-cache string    Path to a registry-name cache file (disabled if unset)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ArtGrek/jsonshape/internal/regcache"
	"github.com/ArtGrek/jsonshape/pkg/configfile"
	"github.com/ArtGrek/jsonshape/pkg/shape"
	"github.com/ArtGrek/jsonshape/pkg/sink"
	"github.com/ArtGrek/jsonshape/pkg/source"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate", "gen":
		cmdGenerate(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`jsonshape: infer a Rust data model from JSON sample records

Usage:
  jsonshape generate [options] <dir>...

Run 'jsonshape generate -h' for option details.`)
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to a YAML config file")
	root := fs.String("root", "Root", "Identifier for the top-level record")
	outPath := fs.String("out", "model.rs", "Output file path")
	cachePath := fs.String("cache", "", "Path to a registry-name cache file (disabled if unset)")

	fs.Usage = func() {
		fmt.Println(`Usage: jsonshape generate [options] <dir>...

Infers record and enum declarations from every *.json file found under the
given directories and writes the resulting Rust source to -out.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input directories")
		fs.Usage()
		os.Exit(1)
	}

	records, err := source.LoadTrees(fs.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions: %v\n", err)
		os.Exit(1)
	}

	var opts configfile.Options
	if *configPath != "" {
		opts, err = configfile.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := shape.Config{
		SkipComments:        opts.SkipCommentsSet(),
		Rename:              opts.RenameSet(),
		GenerateAdapter:     opts.GenerateAdapter,
		AdapterSourceModule: opts.AdapterSourceModule,
		EnumsImportPath:     opts.EnumsImportPath,
		Observer:            &progressLogger{},
	}

	var cache *regcache.Cache
	if *cachePath != "" {
		cache, err = regcache.Open(*cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening registry cache: %v\n", err)
			os.Exit(1)
		}
		cfg.Cache = cache
	}

	out, err := shape.Generate(*root, records, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating code: %v\n", err)
		os.Exit(1)
	}

	if err := sink.WriteFile(*outPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	if cache != nil {
		if err := cache.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing registry cache: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stderr, "Wrote %s from %d records\n", *outPath, len(records))
}

// progressLogger is the default Observer: it prints one line per emitted
// declaration to stderr, in the spirit of the teacher's plain
// fmt.Fprintf(os.Stderr, ...) diagnostics.
type progressLogger struct {
	fields int
}

func (p *progressLogger) FieldDecided(recordName, fieldName string) {
	p.fields++
}

func (p *progressLogger) DeclarationEmitted(name string) {
	fmt.Fprintf(os.Stderr, "emitted %s\n", name)
}
