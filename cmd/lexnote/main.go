package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolbeans/lexnote/pkg/highlight"
	"github.com/coolbeans/lexnote/pkg/pdftext"
	"github.com/coolbeans/lexnote/pkg/source"
	"github.com/coolbeans/lexnote/pkg/store"
	"github.com/coolbeans/lexnote/pkg/translate"
)

var version = "0.1.0"

// Config holds ambient settings read from the environment. Command flags
// override these where both exist.
type Config struct {
	DBPath           string `env:"LEXNOTE_DB" envDefault:"lexnote.db"`
	SourcePath       string `env:"LEXNOTE_SOURCE"`
	PatternsPath     string `env:"LEXNOTE_PATTERNS"`
	ExpectedArticles int    `env:"LEXNOTE_EXPECTED_ARTICLES" envDefault:"105"`
	ExpectedRecitals int    `env:"LEXNOTE_EXPECTED_RECITALS" envDefault:"115"`
	Debug            bool   `env:"LEXNOTE_DEBUG"`
}

var (
	cfg    Config
	logger *zap.Logger
)

func main() {
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	var err error
	logger, err = zapCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	rootCmd := &cobra.Command{
		Use:   "lexnote",
		Short: "Regulation translation import and annotation toolkit",
		Long: `Lexnote manages translations and annotations for an EU regulation.

It parses translated documents (PDF-extracted or pasted text) into
articles, recitals, definitions, annexes and footnotes using multilingual
marker patterns, validates the result against the English source, and
selectively imports the units an administrator confirms.`,
		Version: version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(annotationsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract plain text from a PDF document",
		Long: `Extract plain text from a PDF, page by page, for later parsing.

Example:
  lexnote extract --source ehds-de.pdf --output ehds-de.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			output, _ := cmd.Flags().GetString("output")
			if sourcePath == "" {
				return fmt.Errorf("--source flag is required")
			}

			fmt.Printf("Extracting text from: %s\n", sourcePath)

			extractor := pdftext.NewExtractor(logger)
			text, err := extractor.ExtractFile(cmd.Context(), sourcePath, func(p pdftext.Progress) {
				if p.Phase == pdftext.PhaseExtracting {
					fmt.Printf("\r  page %d/%d (%d%%)", p.Page, p.TotalPages, p.Percent)
				}
			})
			fmt.Println()
			if err != nil {
				return fmt.Errorf("extraction failed (you can paste the text manually instead): %w", err)
			}

			if output == "" {
				fmt.Println(text)
				return nil
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(text), output)
			return nil
		},
	}
	cmd.Flags().String("source", "", "PDF file to extract")
	cmd.Flags().String("output", "", "write extracted text here (default: stdout)")
	return cmd
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a translated document into structural units",
		Long: `Parse a translated document into articles, recitals, definitions,
annexes and footnotes using multilingual marker patterns.

Example:
  lexnote parse --source ehds-de.txt
  lexnote parse --source ehds-de.txt --json > parsed.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			asJSON, _ := cmd.Flags().GetBool("json")
			if sourcePath == "" {
				return fmt.Errorf("--source flag is required")
			}

			parsed, err := parseFile(cmd, sourcePath)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(parsed, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding parse result: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Parsed %s (detected language: %s)\n", sourcePath, parsed.DetectedLanguage)
			fmt.Printf("  Articles:    %d\n", len(parsed.Articles))
			fmt.Printf("  Recitals:    %d\n", len(parsed.Recitals))
			fmt.Printf("  Definitions: %d\n", len(parsed.Definitions))
			fmt.Printf("  Annexes:     %d\n", len(parsed.Annexes))
			fmt.Printf("  Footnotes:   %d\n", len(parsed.Footnotes))
			return nil
		},
	}
	cmd.Flags().String("source", "", "document text file to parse")
	cmd.Flags().String("patterns", cfg.PatternsPath, "YAML file with extra marker patterns")
	cmd.Flags().Bool("json", false, "emit the full parse result as JSON")
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a parsed document before import",
		Long: `Parse a translated document and produce the validation report:
unit counts, duplicates against already-imported translations, and
cross-reference warnings against the English source.

Example:
  lexnote validate --source ehds-de.txt --language de --english english.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			languageCode, _ := cmd.Flags().GetString("language")
			englishPath, _ := cmd.Flags().GetString("english")
			if sourcePath == "" {
				return fmt.Errorf("--source flag is required")
			}

			parsed, err := parseFile(cmd, sourcePath)
			if err != nil {
				return err
			}

			result, err := validateParsed(cmd.Context(), parsed, languageCode, englishPath)
			if err != nil {
				return err
			}

			fmt.Print(result.String())
			if !result.IsValid {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
	cmd.Flags().String("source", "", "document text file to validate")
	cmd.Flags().String("patterns", cfg.PatternsPath, "YAML file with extra marker patterns")
	cmd.Flags().String("language", "", "target language code for duplicate detection")
	cmd.Flags().String("english", cfg.SourcePath, "English source corpus JSON")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import selected translation units",
		Long: `Parse a translated document and commit the selected articles and
recitals as translation rows for one language. Only explicitly selected
units are saved; use --all-articles / --all-recitals to select everything.

Example:
  lexnote import --source ehds-de.txt --language de --articles 1,2,5 --recitals 1,2,3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			languageCode, _ := cmd.Flags().GetString("language")
			articlesFlag, _ := cmd.Flags().GetString("articles")
			recitalsFlag, _ := cmd.Flags().GetString("recitals")
			allArticles, _ := cmd.Flags().GetBool("all-articles")
			allRecitals, _ := cmd.Flags().GetBool("all-recitals")
			if sourcePath == "" {
				return fmt.Errorf("--source flag is required")
			}
			if languageCode == "" {
				return fmt.Errorf("--language flag is required")
			}

			parsed, err := parseFile(cmd, sourcePath)
			if err != nil {
				return err
			}

			selectedArticles, err := parseIntList(articlesFlag)
			if err != nil {
				return fmt.Errorf("--articles: %w", err)
			}
			selectedRecitals, err := parseIntList(recitalsFlag)
			if err != nil {
				return fmt.Errorf("--recitals: %w", err)
			}
			if allArticles {
				selectedArticles = selectedArticles[:0]
				for _, a := range parsed.Articles {
					selectedArticles = append(selectedArticles, a.ArticleNumber)
				}
			}
			if allRecitals {
				selectedRecitals = selectedRecitals[:0]
				for _, r := range parsed.Recitals {
					selectedRecitals = append(selectedRecitals, r.RecitalNumber)
				}
			}
			if len(selectedArticles) == 0 && len(selectedRecitals) == 0 {
				return fmt.Errorf("nothing selected: pass --articles, --recitals, or the --all-* flags")
			}

			st, err := store.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			importer := translate.NewImporter(st, logger)

			fmt.Printf("Importing %d article(s), %d recital(s) as %q...\n",
				len(selectedArticles), len(selectedRecitals), languageCode)

			result, err := importer.ImportTranslations(cmd.Context(), parsed, languageCode, selectedArticles, selectedRecitals)
			if err != nil {
				return err
			}

			printOutcome := func(label string, o translate.CategoryOutcome) {
				switch {
				case o.Attempted == 0:
					fmt.Printf("  %s: nothing selected\n", label)
				case o.Err != nil:
					fmt.Printf("  %s: FAILED (%d attempted): %v\n", label, o.Attempted, o.Err)
				default:
					fmt.Printf("  %s: saved %d/%d\n", label, o.Saved, o.Attempted)
				}
			}
			printOutcome("Articles", result.Articles)
			printOutcome("Recitals", result.Recitals)

			if !result.Succeeded() {
				return fmt.Errorf("import completed with failures; the parsed preview is still valid, retry the failed category")
			}
			return nil
		},
	}
	cmd.Flags().String("source", "", "document text file to import from")
	cmd.Flags().String("patterns", cfg.PatternsPath, "YAML file with extra marker patterns")
	cmd.Flags().String("language", "", "language code to tag imported rows with")
	cmd.Flags().String("articles", "", "comma-separated article numbers to import")
	cmd.Flags().String("recitals", "", "comma-separated recital numbers to import")
	cmd.Flags().Bool("all-articles", false, "import every parsed article")
	cmd.Flags().Bool("all-recitals", false, "import every parsed recital")
	return cmd
}

func annotationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotations",
		Short: "Manage and preview annotations",
	}
	cmd.AddCommand(annotationsAddCmd())
	cmd.AddCommand(annotationsListCmd())
	cmd.AddCommand(annotationsDeleteCmd())
	cmd.AddCommand(annotationsRenderCmd())
	return cmd
}

func annotationsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an annotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, _ := cmd.Flags().GetString("content-type")
			contentID, _ := cmd.Flags().GetString("content-id")
			text, _ := cmd.Flags().GetString("text")
			color, _ := cmd.Flags().GetString("color")
			comment, _ := cmd.Flags().GetString("comment")
			tags, _ := cmd.Flags().GetStringSlice("tags")

			st, err := store.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			saved, err := st.CreateAnnotation(cmd.Context(), &highlight.Annotation{
				ContentType:  highlight.ContentType(contentType),
				ContentID:    contentID,
				SelectedText: text,
				Color:        highlight.Color(color),
				Comment:      comment,
				TagIDs:       tags,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created annotation %s\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().String("content-type", "article", "content type: article, recital, implementing_act")
	cmd.Flags().String("content-id", "", "document unit the annotation belongs to")
	cmd.Flags().String("text", "", "literal text snippet to highlight")
	cmd.Flags().String("color", "yellow", "highlight color: yellow, green, blue, pink, orange")
	cmd.Flags().String("comment", "", "optional comment")
	cmd.Flags().StringSlice("tags", nil, "tag IDs")
	return cmd
}

func annotationsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List annotations for a document unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, _ := cmd.Flags().GetString("content-type")
			contentID, _ := cmd.Flags().GetString("content-id")

			st, err := store.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			annotations, err := st.ListAnnotations(cmd.Context(), highlight.ContentType(contentType), contentID)
			if err != nil {
				return err
			}

			if len(annotations) == 0 {
				fmt.Println("No annotations.")
				return nil
			}
			for _, a := range annotations {
				fmt.Printf("%s  [%s]  %q", a.ID, a.Color, a.SelectedText)
				if a.Comment != "" {
					fmt.Printf("  # %s", a.Comment)
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().String("content-type", "article", "content type")
	cmd.Flags().String("content-id", "", "document unit")
	return cmd
}

func annotationsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an annotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				return fmt.Errorf("--id flag is required")
			}

			st, err := store.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteAnnotation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted annotation %s\n", id)
			return nil
		},
	}
	cmd.Flags().String("id", "", "annotation ID")
	return cmd
}

func annotationsRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Preview a text with its annotations highlighted",
		Long: `Render a document unit's text with every saved annotation's snippet
wrapped in [color|...] markers, the terminal stand-in for the highlight
overlay.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, _ := cmd.Flags().GetString("content-type")
			contentID, _ := cmd.Flags().GetString("content-id")
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file flag is required")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading text: %w", err)
			}

			st, err := store.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			annotations, err := st.ListAnnotations(cmd.Context(), highlight.ContentType(contentType), contentID)
			if err != nil {
				return err
			}

			for _, run := range highlight.RenderHighlighted(string(data), annotations) {
				if run.Highlighted {
					fmt.Printf("[%s|%s]", run.Color, run.Text)
					continue
				}
				fmt.Print(run.Text)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().String("content-type", "article", "content type")
	cmd.Flags().String("content-id", "", "document unit")
	cmd.Flags().String("file", "", "file holding the unit's rendered text")
	return cmd
}

// parseFile reads and parses a document, honoring the --patterns flag.
func parseFile(cmd *cobra.Command, path string) (*translate.ParsedContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	opts := []translate.ParserOption{}
	if patternsPath, _ := cmd.Flags().GetString("patterns"); patternsPath != "" {
		ps := translate.DefaultPatternSet()
		f, err := os.Open(patternsPath)
		if err != nil {
			return nil, fmt.Errorf("opening patterns: %w", err)
		}
		defer f.Close()
		if err := ps.LoadYAML(f); err != nil {
			return nil, err
		}
		opts = append(opts, translate.WithPatternSet(ps))
	}

	return translate.NewParser(opts...).ParseDocument(string(data)), nil
}

// validateParsed runs the validator with optional English corpus and
// duplicate detection against the store.
func validateParsed(ctx context.Context, parsed *translate.ParsedContent, languageCode, englishPath string) (*translate.ValidationResult, error) {
	var englishSource *source.EnglishSource
	if englishPath != "" {
		var err error
		englishSource, err = source.LoadFile(englishPath)
		if err != nil {
			return nil, err
		}
	}

	var existing *translate.ExistingNumbers
	if languageCode != "" {
		st, err := store.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		defer st.Close()

		existing, err = translate.NewImporter(st, logger).ExistingNumbers(ctx, languageCode)
		if err != nil {
			return nil, err
		}
	}

	validator := translate.NewValidator()
	validator.ExpectedArticles = cfg.ExpectedArticles
	validator.ExpectedRecitals = cfg.ExpectedRecitals
	return validator.Validate(parsed, englishSource, existing), nil
}

// parseIntList parses a comma-separated list of positive integers.
func parseIntList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", part)
		}
		nums = append(nums, n)
	}
	return nums, nil
}
