package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dlclark/regexp2"
	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"mirlo/pkg/driver"
	"mirlo/pkg/report"
	"mirlo/pkg/source"
)

const configFile = ".mirlo.yml"

// config is the optional .mirlo.yml the CLI honors.
type config struct {
	MaxTableRows int    `yaml:"max-table-rows"`
	Warnings     *bool  `yaml:"warnings"`
	Color        string `yaml:"color"`
}

func loadConfig() (*config, error) {
	cfg := &config{MaxTableRows: report.MaxTableRows, Color: "auto"}
	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, pkgerrors.Wrapf(err, "reading %s", configFile)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing %s", configFile)
	}
	if cfg.MaxTableRows <= 0 {
		cfg.MaxTableRows = report.MaxTableRows
	}
	return cfg, nil
}

func (cfg *config) showWarnings() bool {
	return cfg.Warnings == nil || *cfg.Warnings
}

func readSource(c *cli.Context) (*source.SourceFile, error) {
	if path := c.Args().First(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "reading %s", path)
		}
		return source.FromFile(path, string(data)), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reading stdin")
	}
	return source.NewStdinSource(string(data)), nil
}

// diagnosticFilter matches finding messages against --filter. The
// pattern is compiled in ECMAScript flavor, the one the tool's users
// write anyway.
type diagnosticFilter struct {
	re *regexp2.Regexp
}

func newDiagnosticFilter(pattern string) (*diagnosticFilter, error) {
	if pattern == "" {
		return &diagnosticFilter{}, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "compiling filter %q", pattern)
	}
	return &diagnosticFilter{re: re}, nil
}

func (f *diagnosticFilter) matches(message string) bool {
	if f.re == nil {
		return true
	}
	ok, err := f.re.MatchString(message)
	return err == nil && ok
}

func setupColor(c *cli.Context, cfg *config) {
	if c.Bool("no-color") || cfg.Color == "never" {
		color.NoColor = true
	} else if cfg.Color == "always" {
		color.NoColor = false
	}
}

func printFindings(findings []driver.Finding, filter *diagnosticFilter, paint *color.Color, label string) {
	for _, f := range findings {
		if !filter.matches(f.Message) {
			continue
		}
		paint.Printf("%s ", label)
		fmt.Printf("[Línea %d, Columna %d] %s\n", f.Line, f.Column, f.Message)
	}
}

func main() {
	app := &cli.App{
		Name:  "mirlo",
		Usage: "analizador léxico, sintáctico y semántico para el IDE didáctico",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
			&cli.StringFlag{Name: "filter", Usage: "only show diagnostics whose message matches this pattern"},
		},
		Commands: []*cli.Command{
			{
				Name:  "tokens",
				Usage: "print the lexical report",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					setupColor(c, cfg)
					src, err := readSource(c)
					if err != nil {
						return err
					}
					res := driver.AnalyzeSyntax(src)
					fmt.Println(report.LexicalCapped(res.Tokens, res.LexicalErrors, cfg.MaxTableRows))
					if res.LexicalErrorCount > 0 {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
			{
				Name:  "ast",
				Usage: "print the syntactic report",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					setupColor(c, cfg)
					src, err := readSource(c)
					if err != nil {
						return err
					}
					res := driver.AnalyzeSyntax(src)
					fmt.Println(res.SyntacticReport)
					if res.SyntaxErrorCount > 0 {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
			{
				Name:  "check",
				Usage: "run the semantic analysis and list the findings",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					setupColor(c, cfg)
					filter, err := newDiagnosticFilter(c.String("filter"))
					if err != nil {
						return err
					}
					src, err := readSource(c)
					if err != nil {
						return err
					}
					res := driver.AnalyzeSemantics(src)
					fmt.Println(res.Report)
					printFindings(res.Errors, filter, color.New(color.FgRed, color.Bold), "error")
					if cfg.showWarnings() {
						printFindings(res.Warnings, filter, color.New(color.FgYellow), "aviso")
					}
					if res.ErrorCount > 0 {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupColor(c, cfg)
			src, err := readSource(c)
			if err != nil {
				return err
			}
			syn := driver.AnalyzeSyntax(src)
			sem := driver.AnalyzeSemantics(src)
			fmt.Println(report.LexicalCapped(syn.Tokens, syn.LexicalErrors, cfg.MaxTableRows))
			fmt.Println(syn.SyntacticReport)
			fmt.Println(sem.Report)
			if syn.LexicalErrorCount > 0 || syn.SyntaxErrorCount > 0 || sem.ErrorCount > 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			if msg := err.Error(); msg != "" {
				color.New(color.FgRed).Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
