package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ivoronin/randtree/internal/config"
	"github.com/ivoronin/randtree/internal/content"
	"github.com/ivoronin/randtree/internal/generator"
	"github.com/ivoronin/randtree/internal/journal"
)

// generateOptions holds CLI flags for the generate command.
type generateOptions struct {
	spec           generator.Spec
	sizeBudgetStr  string
	maxFileSizeStr string
	configFile     string
	journalFile    string
	verbose        bool
	noProgress     bool
}

// newGenerateCmd creates the generate subcommand.
func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{spec: generator.Defaults()}
	opts.sizeBudgetStr = strconv.FormatInt(opts.spec.SizeBudget, 10)
	opts.maxFileSizeStr = strconv.FormatInt(opts.spec.MaxFileSize, 10)

	cmd := &cobra.Command{
		Use:   "generate TARGET",
		Short: "Generate a pseudo-random file hierarchy",
		Long: `Creates TARGET and fills it with a random tree of directories and files
whose sizes add up to exactly --size-budget bytes.

The same --random-seed and parameters always produce the same tree. Parameters
can be read from a TOML profile with --config; flags given on the command line
take precedence over the profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			return runGenerate(cmd.OutOrStdout(), args[0], spec, opts.journalFile, opts.verbose, !opts.noProgress)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.spec.Seed, "random-seed", opts.spec.Seed, "Seed for the random generator (default: current time)")
	f.IntVar(&opts.spec.NameMaxLength, "name-max-length", opts.spec.NameMaxLength, "Maximum length of file and directory names in glyphs (capped at 255 bytes)")
	f.Float64Var(&opts.spec.NameAlpha, "name-alpha", opts.spec.NameAlpha, "Alpha shape of the name length distribution")
	f.Float64Var(&opts.spec.NameBeta, "name-beta", opts.spec.NameBeta, "Beta shape of the name length distribution")
	f.StringVar(&opts.spec.NameGlyphs, "name-glyphs", opts.spec.NameGlyphs, "Characters names are made of")
	f.IntVar(&opts.spec.Levels, "levels", opts.spec.Levels, "Maximum directory depth")
	f.StringVar(&opts.sizeBudgetStr, "size-budget", opts.sizeBudgetStr, "Total size of all files (e.g., 100, 1MiB, 128M)")
	f.StringVar(&opts.maxFileSizeStr, "max-file-size", opts.maxFileSizeStr, "Maximum size of a single file")
	f.IntVar(&opts.spec.MaxSubdirs, "max-sub-dirs", opts.spec.MaxSubdirs, "Maximum number of subdirectories per directory")
	f.Var(&opts.spec.FileContent, "file-content", "File content ("+strings.Join(content.Kinds(), ", ")+")")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Show every created directory and file")
	f.StringVar(&opts.configFile, "config", "", "TOML profile with generation parameters")
	f.StringVar(&opts.journalFile, "journal", "", "Record the run in this journal file")
	f.BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")

	return cmd
}

// resolve merges flag values, the optional profile and explicitly set flags,
// in increasing order of precedence.
func (o *generateOptions) resolve(flags *pflag.FlagSet) (generator.Spec, error) {
	spec := o.spec

	var err error
	if spec.SizeBudget, err = parseSize(o.sizeBudgetStr); err != nil {
		return spec, fmt.Errorf("invalid --size-budget: %w", err)
	}
	if spec.MaxFileSize, err = parseSize(o.maxFileSizeStr); err != nil {
		return spec, fmt.Errorf("invalid --max-file-size: %w", err)
	}

	if o.configFile == "" {
		return spec, nil
	}

	profile, err := config.Load(o.configFile, spec)
	if err != nil {
		return spec, err
	}
	flags.Visit(func(f *pflag.Flag) {
		overrideFromFlag(&profile, spec, f.Name)
	})
	return profile, nil
}

// overrideFromFlag copies the field bound to the named flag from src to dst.
func overrideFromFlag(dst *generator.Spec, src generator.Spec, name string) {
	switch name {
	case "random-seed":
		dst.Seed = src.Seed
	case "name-max-length":
		dst.NameMaxLength = src.NameMaxLength
	case "name-alpha":
		dst.NameAlpha = src.NameAlpha
	case "name-beta":
		dst.NameBeta = src.NameBeta
	case "name-glyphs":
		dst.NameGlyphs = src.NameGlyphs
	case "levels":
		dst.Levels = src.Levels
	case "size-budget":
		dst.SizeBudget = src.SizeBudget
	case "max-file-size":
		dst.MaxFileSize = src.MaxFileSize
	case "max-sub-dirs":
		dst.MaxSubdirs = src.MaxSubdirs
	case "file-content":
		dst.FileContent = src.FileContent
	}
}

// runGenerate generates target from spec and records the run if a journal
// is given.
func runGenerate(out io.Writer, target string, spec generator.Spec, journalFile string, verbose, showProgress bool) error {
	runs, err := journal.Open(journalFile)
	if err != nil {
		return err
	}
	defer func() { _ = runs.Close() }()

	fmt.Fprintf(out, "dirname: %s\n", target)
	fmt.Fprintf(out, "random seed: %d\n", spec.Seed)
	fmt.Fprintf(out, "file content: %s\n", spec.FileContent)

	res, err := generator.Run(target, spec, generator.Options{
		Progress: showProgress,
		Log:      newLogger(out, verbose),
	})
	if err != nil {
		return err
	}

	entry, err := journal.NewEntry(spec, res)
	if err != nil {
		return err
	}
	return runs.Record(entry)
}
