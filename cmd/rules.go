package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/heimdall-ai/heimdall/internal/rules"
	"github.com/heimdall-ai/heimdall/internal/ui"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/heimdall-ai/heimdall/store"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage classification categories",
	Long: `List, add, update and delete the categories emails are classified into.
Changes are written to the rules file immediately and picked up by the next
classification, including by a running 'heimdall serve'.`,
}

var rulesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the rule set",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRules(cmd, func(svc *rules.Service, path string) error {
			db, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return store.Export(db, store.FormatJSON, cmd.OutOrStdout())
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderRules(db, path))
			return nil
		})
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a category",
	Long: `Add a category with its sub-categories.

Examples:
  heimdall rules add --category "Loan Request" --sub "Payment:loan,payment,due date"
  heimdall rules add --file category.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := categoryFromFlags(cmd, "")
		if err != nil {
			return err
		}
		return withRules(cmd, func(svc *rules.Service, _ string) error {
			if err := svc.Add(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render("Rule added successfully"))
			return nil
		})
	},
}

var rulesUpdateCmd = &cobra.Command{
	Use:   "update <category>",
	Short: "Replace the sub-categories of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := categoryFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		return withRules(cmd, func(svc *rules.Service, _ string) error {
			if err := svc.Update(cmd.Context(), args[0], c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render(fmt.Sprintf("Rule for '%s' updated successfully", args[0])))
			return nil
		})
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:     "delete <category>",
	Aliases: []string{"rm"},
	Short:   "Delete a category",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRules(cmd, func(svc *rules.Service, _ string) error {
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render(fmt.Sprintf("Rule for '%s' deleted successfully", args[0])))
			return nil
		})
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the rule set as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		return withRules(cmd, func(svc *rules.Service, _ string) error {
			db, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return store.Export(db, format, w)
		})
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the rule set with a JSON or YAML document",
	Long: `Replace the whole rule set with the categories in a JSON or YAML file.
Every category is validated and duplicate names are rejected before anything is written.
Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if !cmd.Flags().Changed("format") {
			format = formatFromExt(args[0])
		}

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()
			r = f
		}

		db, err := store.Import(format, r)
		if err != nil {
			return err
		}
		return withRules(cmd, func(svc *rules.Service, path string) error {
			if err := svc.Replace(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render(fmt.Sprintf("Imported %d categories into %s", len(db.Categories), path)))
			return nil
		})
	},
}

var rulesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the rule set whenever the rules file changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRules(cmd, func(svc *rules.Service, path string) error {
			return watchRules(cmd, svc, path)
		})
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesUpdateCmd, rulesDeleteCmd,
		rulesExportCmd, rulesImportCmd, rulesWatchCmd)

	rulesListCmd.Flags().Bool("json", false, "print the raw rules document")

	for _, c := range []*cobra.Command{rulesAddCmd, rulesUpdateCmd} {
		c.Flags().String("category", "", "category name (request_type)")
		c.Flags().StringArray("sub", nil, `sub-category as "Name:keyword1,keyword2" (repeatable)`)
		c.Flags().StringP("file", "f", "", "read the category as JSON from a file (- for stdin)")
	}

	rulesExportCmd.Flags().String("format", store.FormatJSON, "output format: json or yaml")
	rulesExportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	rulesImportCmd.Flags().String("format", store.FormatJSON, "input format: json or yaml (default from file extension)")
}

// withRules opens the configured rule store for the duration of fn.
func withRules(cmd *cobra.Command, fn func(svc *rules.Service, path string) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s := openRuleStore(cfg)
	defer func() { _ = s.Close() }()
	return fn(rules.NewService(s), s.Path())
}

// categoryFromFlags builds a category from --file, or from --category and --sub.
// name is used when --category is not given.
func categoryFromFlags(cmd *cobra.Command, name string) (models.Category, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		var r io.Reader = cmd.InOrStdin()
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return models.Category{}, fmt.Errorf("open %s: %w", file, err)
			}
			defer func() { _ = f.Close() }()
			r = f
		}
		var c models.Category
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return models.Category{}, fmt.Errorf("decode category: %w", err)
		}
		return c, nil
	}

	if v, _ := cmd.Flags().GetString("category"); v != "" {
		name = v
	}
	subs, _ := cmd.Flags().GetStringArray("sub")
	if name == "" {
		return models.Category{}, errors.New("--category or --file is required")
	}

	c := models.Category{RequestType: name, SubRequestTypes: []models.SubCategory{}}
	for _, v := range subs {
		sub, err := parseSubFlag(v)
		if err != nil {
			return models.Category{}, err
		}
		c.SubRequestTypes = append(c.SubRequestTypes, sub)
	}
	return c, nil
}

func formatFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return store.FormatYAML
	default:
		return store.FormatJSON
	}
}

// watchRules watches the directory holding the rules file; editors and the
// store itself replace the file by rename, which a file watch would miss.
func watchRules(cmd *cobra.Command, svc *rules.Service, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	render := func() {
		db, err := svc.List(cmd.Context())
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.StyleError.Render(userMessage(err)))
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderRules(db, path))
	}
	render()
	fmt.Fprintln(cmd.ErrOrStderr(), ui.StyleSubtle.Render("Watching "+path+" (Ctrl+C to stop)"))

	target := filepath.Clean(path)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				fmt.Fprintln(cmd.OutOrStdout())
				render()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			LogError("watch rules", err)
		}
	}
}
