package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Lewis310/lewishealthapplication/internal/config"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/logger"
	"github.com/Lewis310/lewishealthapplication/internal/mcp"
	"github.com/Lewis310/lewishealthapplication/internal/observability"
	"github.com/Lewis310/lewishealthapplication/internal/ops"
	"github.com/Lewis310/lewishealthapplication/internal/report"
	"github.com/Lewis310/lewishealthapplication/internal/web"
)

// ReportOutput is what the report command prints in JSON format.
type ReportOutput struct {
	ID     string            `json:"id"`
	Report report.View       `json:"report"`
	Files  []ops.WriteOutput `json:"files,omitempty"`
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, log *logger.Logger) *cli.App {
	if log == nil {
		log = logger.Nop()
	}
	app := &cli.App{
		Name:    "healthreport",
		Usage:   "Daily health report from activity and nutrition CSVs",
		Version: Version,
		Commands: []*cli.Command{
			reportCmd(db, cfg, log),
			serveCmd(db, cfg, log),
			mcpCmd(db, cfg, log),
			configCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// reportCmd creates the report command.
func reportCmd(db *sql.DB, cfg *config.Config, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Generate a report from CSV files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "activity", Aliases: []string{"a"}, Usage: "Activity CSV (date, calories_burned, active_minutes, sleep_minutes)"},
			&cli.StringFlag{Name: "nutrition", Aliases: []string{"n"}, Usage: "Nutrition CSV (date, protein_g)"},
			&cli.Float64Flag{Name: "weight-kg", Usage: "Body weight used for the protein target"},
			&cli.Float64Flag{Name: "protein-per-kg", Usage: "Protein grams per kg of body weight"},
			&cli.StringFlag{Name: "duplicate-dates", Usage: "Duplicate nutrition dates: first|reject"},
			&cli.StringFlag{Name: "delimiter", Aliases: []string{"d"}, Usage: "Field delimiter: , | ; | tab (default: tab for .tsv, else ,)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the report CSV to this path"},
			&cli.StringFlag{Name: "chart", Usage: "Write the calories chart PNG to this path"},
			&cli.StringFlag{Name: "markdown", Usage: "Write the Markdown report to this path"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|markdown"},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if format != "json" && format != "markdown" {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("format must be json or markdown, got %q", format)))
			}
			if c.String("activity") == "" {
				return outputError(errors.NewInvalidRequest("--activity is required"))
			}
			delim, err := parseDelimiter(c.String("delimiter"), c.String("activity"))
			if err != nil {
				return outputError(err)
			}

			activity, err := ops.OpenInput(c.String("activity"))
			if err != nil {
				return outputError(err)
			}
			defer activity.Close()

			input := ops.GenerateInput{
				Activity:     activity,
				ActivityName: filepath.Base(activity.Name()),
				Delimiter:    delim,
				Surface:      observability.SurfaceCLI,
			}

			if path := c.String("nutrition"); path != "" {
				nutrition, err := ops.OpenInput(path)
				if err != nil {
					return outputError(err)
				}
				defer nutrition.Close()
				input.Nutrition = nutrition
				input.NutritionName = filepath.Base(nutrition.Name())
			}

			if c.IsSet("weight-kg") {
				v := c.Float64("weight-kg")
				input.Overrides.WeightKg = &v
			}
			if c.IsSet("protein-per-kg") {
				v := c.Float64("protein-per-kg")
				input.Overrides.ProteinPerKg = &v
			}
			if s := c.String("duplicate-dates"); s != "" {
				input.Overrides.DuplicateDates = &s
			}

			out, err := ops.Generate(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			log.Debug("report generated", "id", out.ID, "rows", out.Report.Table.Len())

			var files []ops.WriteOutput
			for _, w := range []ops.WriteInput{
				{Path: c.String("out"), Kind: ops.KindCSV, Data: out.Report.CSV},
				{Path: c.String("chart"), Kind: ops.KindChart, Data: out.Report.Chart.PNG},
				{Path: c.String("markdown"), Kind: ops.KindMarkdown, Data: []byte(out.Report.Markdown())},
			} {
				if w.Path == "" {
					continue
				}
				written, err := ops.Write(w)
				if err != nil {
					return outputError(err)
				}
				files = append(files, *written)
			}

			if format == "markdown" {
				_, err := fmt.Fprint(os.Stdout, out.Report.Markdown())
				return err
			}
			return outputJSON(ReportOutput{ID: out.ID, Report: out.Report.View(), Files: files})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Address to bind (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			merged := config.Merge(cfg, &config.Config{
				Bind: c.String("bind"),
				Port: c.Int("port"),
			})
			if err := merged.Validate(); err != nil {
				return outputError(err)
			}

			srv, err := web.NewServer(db, merged, log, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, log)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(db *sql.DB, cfg *config.Config, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(db, cfg, log, Version)
		},
	}
}

// configCmd creates the config command and its subcommands.
func configCmd(cfg *config.Config) *cli.Command {
	pathFlag := &cli.StringFlag{Name: "path", Usage: "Config file path (default: ~/.healthreport/config.yaml)"}
	return &cli.Command{
		Name:  "config",
		Usage: "Show or create the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration as YAML",
				Action: func(c *cli.Context) error {
					b, err := yaml.Marshal(cfg)
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					_, err = os.Stdout.Write(b)
					return err
				},
			},
			{
				Name:  "init",
				Usage: "Write a config file with the default values",
				Flags: []cli.Flag{
					pathFlag,
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path, err := configPath(c.String("path"))
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					if _, err := os.Stat(path); err == nil && !c.Bool("force") {
						return outputError(errors.NewInvalidRequest(fmt.Sprintf("%s already exists (use --force to overwrite)", path)))
					}
					if err := config.Save(config.DefaultConfig(), path); err != nil {
						return outputError(errors.NewInternal(err))
					}
					return outputJSON(map[string]string{"path": path})
				},
			},
		},
	}
}

// Helper functions

// configPath resolves the config file location.
func configPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := config.DefaultBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.FileName), nil
}

// parseDelimiter maps the --delimiter flag to a rune. Without the flag a .tsv
// activity file selects tab.
func parseDelimiter(flag, activityPath string) (rune, error) {
	switch flag {
	case "":
		if strings.EqualFold(filepath.Ext(activityPath), ".tsv") {
			return '\t', nil
		}
		return ',', nil
	case ",", ";":
		return rune(flag[0]), nil
	case "tab", "\\t":
		return '\t', nil
	}
	return 0, errors.NewInvalidRequest(fmt.Sprintf("delimiter must be ',', ';' or tab, got %q", flag))
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return cli.Exit("cancelled", 1)
	}
	var rErr *errors.ReportError
	if stderrors.As(err, &rErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
