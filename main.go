package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsontab/internal/analyzer"
	"github.com/mcncl/jsontab/internal/config"
	"github.com/mcncl/jsontab/internal/errors"
	"github.com/mcncl/jsontab/internal/flatten"
	"github.com/mcncl/jsontab/internal/formatter"
	"github.com/mcncl/jsontab/internal/generator"
	"github.com/mcncl/jsontab/internal/logging"
	"github.com/mcncl/jsontab/internal/models"
	"github.com/mcncl/jsontab/internal/parser"
	"github.com/mcncl/jsontab/internal/query"
)

// CLI defines the command-line interface
var CLI struct {
	Files []string `arg:"" optional:"" help:"JSON files to read. If none are given, reads from stdin."`

	Format       string `help:"Table format: grid, plain, simple, github or fancy_grid." short:"f"`
	ASCII        bool   `name:"ascii" help:"Output the table in plain ASCII (same as --format plain)." short:"a"`
	Output       string `help:"Also save the flattened table to this CSV file." short:"o" type:"path"`
	Width        int    `help:"Maximum column width for display." short:"w"`
	Structure    bool   `help:"Show JSON structure analysis." short:"s"`
	Hierarchical bool   `help:"Display JSON in hierarchical format with nested tables."`
	NoInfo       bool   `help:"Do not print the table info block."`

	Schema       bool   `help:"Infer and print a schema instead of a table."`
	SchemaFormat string `help:"Schema format: json, yaml, markdown or text."`
	SchemaOutput string `help:"Write the schema to this file instead of stdout." type:"path"`
	Detailed     bool   `help:"Include null rate, unique counts and examples in the schema."`

	Separator string `help:"Separator between path segments in column names."`
	KeyCase   string `help:"Rename keys: original, snake, camel, lower_camel or kebab."`
	KeepEmpty bool   `help:"Keep empty objects and arrays as columns."`
	Select    string `help:"jq expression applied to each document before processing."`

	Config      string `help:"Path to a config file. Defaults to the nearest .jsontab.yml." type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	LogFile     string `help:"Write logs to this file instead of stderr." type:"path"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsontab"),
		kong.Description("A tool to display JSON as tables and infer its schema"),
		kong.UsageOnError(),
	)

	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsontab version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
		os.Exit(1)
	}

	err = run(&Context{Config: cfg, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	_ = closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsontab --help\n")
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the CLI flags on top
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(path, overrides())
	if err != nil {
		return nil, errors.NewInputError("invalid configuration", err)
	}
	return cfg, nil
}

// overrides collects the flags that were explicitly set
func overrides() config.Overrides {
	o := config.Overrides{
		Separator:    CLI.Separator,
		KeyCase:      CLI.KeyCase,
		TableFormat:  CLI.Format,
		MaxWidth:     CLI.Width,
		SchemaFormat: CLI.SchemaFormat,
		LogFile:      CLI.LogFile,
	}
	if CLI.ASCII {
		o.TableFormat = string(formatter.StylePlain)
	}
	enabled, disabled := true, false
	if CLI.KeepEmpty {
		o.KeepEmpty = &enabled
	}
	if CLI.NoInfo {
		o.ShowInfo = &disabled
	}
	if CLI.Detailed {
		o.Detailed = &enabled
	}
	if CLI.Debug {
		o.Debug = &enabled
	}
	return o
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	// 1. Parse JSON input
	docs, err := readDocuments(ctx)
	if err != nil {
		return err
	}

	// 2. Apply the select expression
	if CLI.Select != "" {
		sel, err := query.Compile(CLI.Select)
		if err != nil {
			return err
		}
		for i := range docs {
			if docs[i].Root, err = sel.Select(context.Background(), docs[i].Root); err != nil {
				return err
			}
		}
	}

	roots := make([]models.Value, len(docs))
	for i, doc := range docs {
		roots[i] = doc.Root
	}

	// 3. Schema mode replaces the table output
	if CLI.Schema {
		return writeSchema(ctx, cfg, roots)
	}

	f := formatter.NewFormatterWithConfig(cfg)

	if CLI.Structure {
		for _, root := range roots {
			if err := f.Structure(ctx.Stdout, root); err != nil {
				return err
			}
		}
	}

	// 4. Flatten
	keyCase, err := flatten.ParseKeyCase(cfg.Flatten.KeyCase)
	if err != nil {
		return errors.NewInputError("invalid key case", err)
	}
	flattener := flatten.New(flatten.Options{
		Separator: cfg.Flatten.Separator,
		KeyCase:   keyCase,
		KeepEmpty: cfg.Flatten.KeepEmpty,
	})

	fmt.Fprintln(ctx.Stderr, "Converting to tabular format...")
	table := flattener.Table(roots...)

	// 5. Display
	if CLI.Hierarchical {
		for _, root := range roots {
			if err := f.Hierarchy(ctx.Stdout, flattener.Hierarchy(root)); err != nil {
				return err
			}
		}
	} else if err := f.Table(ctx.Stdout, table); err != nil {
		return err
	}

	if cfg.Table.ShowInfo {
		if err := f.Info(ctx.Stdout, table); err != nil {
			return err
		}
	}

	// 6. Save CSV
	if CLI.Output != "" {
		return writeCSV(ctx, f, table)
	}
	return nil
}

// writeSchema infers a schema from roots and writes it to stdout or a file
func writeSchema(ctx *Context, cfg *config.Config, roots []models.Value) error {
	node := analyzer.NewAnalyzerWithConfig(cfg).Infer(roots...)

	out, err := generator.NewGeneratorWithConfig(cfg).Generate(node, cfg.Schema.Format)
	if err != nil {
		return err
	}

	if CLI.SchemaOutput != "" {
		if err := os.WriteFile(CLI.SchemaOutput, []byte(out), 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.SchemaOutput), err)
		}
		fmt.Fprintf(ctx.Stderr, "Schema written to %s\n", CLI.SchemaOutput)
		return nil
	}

	if _, err := io.WriteString(ctx.Stdout, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// writeCSV saves table to the --output file
func writeCSV(ctx *Context, f *formatter.Formatter, table *models.Table) error {
	file, err := os.Create(CLI.Output)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create file '%s'", CLI.Output), err)
	}
	if err := f.CSV(file, table); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
	}
	fmt.Fprintf(ctx.Stdout, "\nData saved to: %s\n", CLI.Output)
	return nil
}

// readDocuments parses the input files, or stdin when none were given
func readDocuments(ctx *Context) ([]models.Document, error) {
	if len(CLI.Files) > 0 {
		for _, path := range CLI.Files {
			fmt.Fprintf(ctx.Stderr, "Loading JSON file: %s\n", path)
		}
		return parser.ParseFiles(context.Background(), CLI.Files)
	}

	root, err := parseStdin(ctx)
	if err != nil {
		return nil, err
	}
	return []models.Document{{Source: "stdin", Root: root}}, nil
}

// parseStdin reads JSON from piped stdin or, on a terminal, interactively
func parseStdin(ctx *Context) (models.Value, error) {
	if file, ok := ctx.Stdin.(*os.File); ok {
		stdinInfo, err := file.Stat()
		if err != nil {
			return models.Value{}, errors.NewInputError("failed to access stdin", err)
		}

		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			if CLI.Interactive {
				return readInteractiveInput(ctx)
			}
			return models.Value{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	jsonData, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.Value{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseBytes(jsonData)
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) (models.Value, error) {
	fmt.Fprintln(ctx.Stderr, "jsontab Interactive Mode")
	fmt.Fprintln(ctx.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(ctx.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Value{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(jsonData) == 0 {
		return models.Value{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(ctx.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData)
}
