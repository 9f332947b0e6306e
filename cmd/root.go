package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/sbom-srcmap/internal/bom"
	"github.com/StinkyLord/sbom-srcmap/internal/config"
	"github.com/StinkyLord/sbom-srcmap/internal/logger"
	"github.com/StinkyLord/sbom-srcmap/internal/model"
	"github.com/StinkyLord/sbom-srcmap/internal/pipeline"
	"github.com/StinkyLord/sbom-srcmap/internal/sources"
)

const toolVersion = "1.0.0"

var (
	flagConfig    string
	flagBOM       string
	flagOutput    string
	flagFormat    string
	flagSourceDir string
	flagPatterns  []string
	flagAll       bool
	flagInPlace   bool
	flagVerbose   bool
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "sbom-srcmap",
	Short: "Source package mapping for CycloneDX SBOMs",
	Long: `sbom-srcmap annotates the source package components of a CycloneDX SBOM
with the state of their source archives.

The local-sources pass checks every component that earlier mapping passes
left unresolved (MapResult 9-no-match or 5-match-by-name) against a local
directory of source files. A component named "zlib" with version
"1:1.2.13.dfsg-1" matches any file starting with "zlib_1.2.13.dfsg-1"
(the epoch is dropped), e.g. zlib_1.2.13.dfsg-1.dsc. Matches are recorded as
the property srcmap:SourceFileComment = "sources locally available".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var matchCmd = &cobra.Command{
	Use:   "match [BOM...]",
	Short: "Mark components whose sources are available locally",
	Long: `Run the local-sources pass over one or more CycloneDX SBOMs.

Examples:
  sbom-srcmap match --bom sbom.cdx.json --source-dir ./sources --output mapped.cdx.json
  sbom-srcmap match --source-dir ./sources --pattern '*.dsc' < sbom.json > mapped.json
  sbom-srcmap match --source-dir ./sources --in-place a.cdx.json b.cdx.json`,
	RunE: runMatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tool version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", bom.ToolName, toolVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "YAML settings file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: console or json")

	matchCmd.Flags().StringVarP(&flagBOM, "bom", "b", "-", "Input SBOM path (use '-' for stdin)")
	matchCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", "Output file path (use '-' for stdout)")
	matchCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "SBOM format: json or xml (default: by file extension)")
	matchCmd.Flags().StringVarP(&flagSourceDir, "source-dir", "s", "",
		"Directory holding local source files (.dsc, .orig.tar.*, ...).\n"+
			"Without it the local-sources pass leaves the SBOM unchanged.")
	matchCmd.Flags().StringArrayVar(&flagPatterns, "pattern", nil,
		"Only consider source files matching this glob (repeatable), e.g. '*.dsc'")
	matchCmd.Flags().BoolVar(&flagAll, "all", false,
		"Check every component, not only those left unresolved by earlier passes")
	matchCmd.Flags().BoolVar(&flagInPlace, "in-place", false,
		"Rewrite each input SBOM instead of writing --output")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s := config.DefaultSettings()
	if flagConfig != "" {
		if err := s.LoadFile(flagConfig); err != nil {
			return nil, err
		}
	}
	s.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("bom") {
		s.BOMFile = flagBOM
	}
	if flags.Changed("output") {
		s.OutputFile = flagOutput
	}
	if flags.Changed("format") {
		s.Format = flagFormat
	}
	if flags.Changed("source-dir") {
		s.SourceDir = flagSourceDir
	}
	if flags.Changed("pattern") {
		s.SourcePatterns = flagPatterns
	}
	if flags.Changed("all") {
		s.AllComponents = flagAll
	}
	if flags.Changed("verbose") {
		s.Verbose = flagVerbose
	}
	if flags.Changed("log-format") {
		s.LogFormat = flagLogFormat
	}
	return s, nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{
		Level:  s.EffectiveLogLevel(),
		Format: s.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{s.BOMFile}
	}
	if len(inputs) > 1 && !flagInPlace {
		return fmt.Errorf("%d SBOMs given: use --in-place to rewrite each of them", len(inputs))
	}
	if flagInPlace {
		for _, in := range inputs {
			if in == "-" {
				return fmt.Errorf("--in-place cannot be used with stdin")
			}
		}
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "%s v%s\n", bom.ToolName, toolVersion)
	if s.SourceDir != "" {
		fmt.Fprintf(stderr, "Source directory: %s\n", s.SourceDir)
	}

	docs := make([]*bom.Document, 0, len(inputs))
	for _, in := range inputs {
		b, err := bom.Read(in, s.Format)
		if err != nil {
			return err
		}
		docs = append(docs, bom.NewDocument(b, log))
	}

	pass := &pipeline.LocalSourcesPass{
		Dir:      s.SourceDir,
		Patterns: s.SourcePatterns,
		Log:      log,
	}
	if s.AllComponents {
		pass.Eligible = func(*model.Component) bool { return true }
	}
	runner := pipeline.New(log, pass)

	results := runner.RunAll(context.Background(), docs)

	// Nothing is written unless every document passed.
	if err := firstFailure(results, inputs); err != nil {
		return err
	}

	for _, dr := range results {
		in := inputs[dr.Index]
		for _, st := range dr.Result.Stats {
			if st.Skipped {
				fmt.Fprintf(stderr, "%s: %s skipped (no source directory)\n", in, st.Pass)
				continue
			}
			fmt.Fprintf(stderr, "%s: %d component(s), %d eligible, %d with local sources\n",
				in, st.Components, st.Eligible, st.Annotated)
		}

		out := s.OutputFile
		if flagInPlace {
			out = in
		}
		if err := bom.Write(docs[dr.Index].BOM, out, s.Format, toolVersion); err != nil {
			return fmt.Errorf("failed to write SBOM: %w", err)
		}
		if out != "-" {
			fmt.Fprintf(stderr, "SBOM written to: %s\n", out)
		}
	}

	return nil
}

// firstFailure returns the error of the first document whose run failed.
func firstFailure(results []pipeline.DocResult, inputs []string) error {
	for _, dr := range results {
		in := inputs[dr.Index]
		if errors.Is(dr.Err, sources.ErrDirectoryUnreadable) {
			return fmt.Errorf("%s: %w (check --source-dir)", in, dr.Err)
		}
		if dr.Err != nil {
			return fmt.Errorf("%s: %w", in, dr.Err)
		}
	}
	return nil
}
