package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ldmathes/dms/internal/admin"
	"github.com/ldmathes/dms/internal/apply"
	"github.com/ldmathes/dms/internal/config"
	"github.com/ldmathes/dms/internal/convert"
	"github.com/ldmathes/dms/internal/render"
	"github.com/ldmathes/dms/internal/review"
	"github.com/ldmathes/dms/internal/scan"
	"github.com/ldmathes/dms/internal/serve"
	"github.com/ldmathes/dms/internal/state"
	"github.com/ldmathes/dms/internal/summarize"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "dms",
		Usage: "file-based document management pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "doc",
				Value:   "Doc",
				Usage:   "document directory",
				EnvVars: []string{"DMS_DOC_DIR"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the document directory, store, and config templates",
				Action: func(c *cli.Context) error {
					return admin.Init(logger(c), out, c.String("doc"))
				},
			},
			{
				Name:  "scan",
				Usage: "detect new, changed, and missing files",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "status-only", Usage: "report without saving a scan report"},
				},
				Action: func(c *cli.Context) error {
					return scan.Run(logger(c), out, c.String("doc"), c.Bool("status-only"))
				},
			},
			{
				Name:  "convert",
				Usage: "produce text renditions of binary formats",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					return convert.Run(c.Context, logger(c), out, cfg, c.String("doc"))
				},
			},
			{
				Name:  "summarize",
				Usage: "generate summary and category suggestions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "model", Usage: "override the configured model"},
					&cli.BoolFlag{Name: "dry-run", Usage: "do not save pending summaries"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					opts := summarize.Options{
						Model:  c.String("model"),
						DryRun: c.Bool("dry-run"),
					}
					return summarize.Run(c.Context, logger(c), out, cfg, c.String("doc"), opts)
				},
			},
			{
				Name:  "review",
				Usage: "review pending summaries",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "approve everything without prompting"},
				},
				Action: func(c *cli.Context) error {
					return review.Run(logger(c), c.String("doc"), c.Bool("all"), os.Stdin, out)
				},
			},
			{
				Name:  "apply",
				Usage: "merge approved summaries into the store and rebuild the index",
				Action: func(c *cli.Context) error {
					return apply.Run(logger(c), out, c.String("doc"))
				},
			},
			{
				Name:  "render",
				Usage: "rebuild index.html from the store",
				Action: func(c *cli.Context) error {
					st, err := state.Load(c.String("doc"))
					if err != nil {
						return err
					}
					if err := render.WriteIndex(c.String("doc"), st); err != nil {
						return err
					}
					fmt.Fprintf(out, "Wrote %s\n", render.IndexPath(c.String("doc")))
					return nil
				},
			},
			{
				Name:  "categories",
				Usage: "manage the category list",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "show categories with document counts",
						Action: func(c *cli.Context) error {
							return admin.ListCategories(out, c.String("doc"))
						},
					},
					{
						Name:      "add",
						Usage:     "add an empty category",
						ArgsUsage: "<name>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 1 {
								return fmt.Errorf("usage: dms categories add <name>")
							}
							return admin.AddCategory(logger(c), out, c.String("doc"), c.Args().Get(0))
						},
					},
					{
						Name:      "rename",
						Usage:     "rename a category and relabel its documents",
						ArgsUsage: "<old> <new>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 2 {
								return fmt.Errorf("usage: dms categories rename <old> <new>")
							}
							return admin.RenameCategory(logger(c), out, c.String("doc"), c.Args().Get(0), c.Args().Get(1))
						},
					},
					{
						Name:      "move",
						Usage:     "move one document, or a whole category, to another category",
						ArgsUsage: "<path> <category> | --category-from <old> <category>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "category-from", Usage: "move every document out of this category"},
						},
						Action: func(c *cli.Context) error {
							if from := c.String("category-from"); from != "" {
								if c.NArg() != 1 {
									return fmt.Errorf("usage: dms categories move --category-from <old> <category>")
								}
								return admin.MoveAll(logger(c), out, c.String("doc"), from, c.Args().Get(0))
							}
							if c.NArg() != 2 {
								return fmt.Errorf("usage: dms categories move <path> <category>")
							}
							return admin.MoveDocument(logger(c), out, c.String("doc"), c.Args().Get(0), c.Args().Get(1))
						},
					},
					{
						Name:      "delete",
						Usage:     "delete a category, moving its documents to " + state.CatchAll,
						ArgsUsage: "<name>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 1 {
								return fmt.Errorf("usage: dms categories delete <name>")
							}
							return admin.DeleteCategory(logger(c), out, c.String("doc"), c.Args().Get(0))
						},
					},
				},
			},
			{
				Name:  "cleanup",
				Usage: "remove store entries whose files are gone",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "skip the confirmation prompt"},
				},
				Action: func(c *cli.Context) error {
					return admin.Cleanup(logger(c), out, c.String("doc"), c.Bool("yes"), os.Stdin)
				},
			},
			{
				Name:  "backfill-mtime",
				Usage: "fill in missing file modification times from disk",
				Action: func(c *cli.Context) error {
					return admin.BackfillMtime(logger(c), out, c.String("doc"))
				},
			},
			{
				Name:  "serve",
				Usage: "browse the document index over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8385", Usage: "listen address"},
				},
				Action: func(c *cli.Context) error {
					return runServe(c, out)
				},
			},
		},
	}
}

func logger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("doc"))
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(c *cli.Context, out io.Writer) error {
	log := logger(c)
	srv := serve.NewServer(c.String("doc"), log)

	httpServer := &http.Server{
		Addr:         c.String("addr"),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(out, "Serving %s on http://%s\n", c.String("doc"), c.String("addr"))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
