package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mgrajesh1/cyclonedx-python/internal/output"
	"github.com/mgrajesh1/cyclonedx-python/internal/registry"
	"github.com/mgrajesh1/cyclonedx-python/internal/requirements"
	"github.com/mgrajesh1/cyclonedx-python/internal/resolver"
)

const toolVersion = "1.0.0"

var (
	flagInput        string
	flagOutput       string
	flagFormat       string
	flagURLTemplate  string
	flagProxy        string
	flagTimeout      time.Duration
	flagLenient      bool
	flagReproducible bool
	flagTree         string
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "cyclonedx-py",
	Short: "CycloneDX SBOM generator for pip requirements files",
	Long: `cyclonedx-py reads a pip requirements file, resolves each pinned package
against the package index, and produces a Software Bill of Materials (SBOM)
in CycloneDX 1.4 format.

For every requirement it fetches the package's metadata and release digests,
deduplicates packages by their package URL, and derives the dependency graph
from each package's declared requirements.`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a CycloneDX BOM from a requirements file",
	Long: `Read a requirements file, resolve every requirement against the package
index, and write a CycloneDX 1.4 BOM.

Examples:
  cyclonedx-py generate -i requirements.txt -o bom.xml
  cyclonedx-py generate -i requirements.txt -o bom.json --format json
  cyclonedx-py generate -i requirements.txt -o - --format json --reproducible`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&flagInput, "input", "i", "requirements.txt", "Input requirements file path")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "bom.xml", "Output file path (use '-' for stdout)")
	generateCmd.Flags().StringVarP(&flagFormat, "format", "f", "xml", "Output format: xml or json")
	generateCmd.Flags().StringVar(&flagURLTemplate, "url-template", registry.DefaultURLTemplate,
		"Package index URL template with {package_name} and {package_version} placeholders")
	generateCmd.Flags().StringVar(&flagProxy, "proxy", "", "HTTPS proxy URL for registry requests (defaults to $HTTPS_PROXY)")
	generateCmd.Flags().DurationVar(&flagTimeout, "timeout", registry.DefaultTimeout, "Timeout for one registry request")
	generateCmd.Flags().BoolVar(&flagLenient, "lenient", false,
		"Continue with a warning when a pre-release version matches no release\n"+
			"in the registry index, instead of failing the run")
	generateCmd.Flags().BoolVar(&flagReproducible, "reproducible", false,
		"Derive the BOM serial number from the resolved content and omit the\n"+
			"timestamp, so identical inputs produce byte-identical output")
	generateCmd.Flags().StringVar(&flagTree, "tree", "",
		"Also write a plain JSON dependency-tree view to this path (use '-' for stdout)")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")

	// The proxy flag falls back to the conventional environment variable.
	// viper resolves flag > env once, here at startup; nothing reads the
	// environment at request time.
	viper.BindPFlag("proxy", generateCmd.Flags().Lookup("proxy"))
	viper.BindEnv("proxy", "HTTPS_PROXY")

	rootCmd.AddCommand(generateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	var format output.Format
	switch flagFormat {
	case "xml":
		format = output.FormatXML
	case "json":
		format = output.FormatJSON
	default:
		return fmt.Errorf("unsupported format %q (supported: xml, json)", flagFormat)
	}

	file, err := os.Open(flagInput)
	if err != nil {
		return fmt.Errorf("cannot open requirements file %q: %w", flagInput, err)
	}
	defer file.Close()

	reqs, err := requirements.Parse(file)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", flagInput, err)
	}

	fmt.Fprintf(os.Stderr, "cyclonedx-py v%s\n", toolVersion)
	fmt.Fprintf(os.Stderr, "Generating CycloneDX BOM from %s (%d requirement(s))\n", flagInput, len(reqs))

	client, err := registry.NewClient(registry.Config{
		URLTemplate: flagURLTemplate,
		ProxyURL:    viper.GetString("proxy"),
		Timeout:     flagTimeout,
		UserAgent:   "cyclonedx-py/" + toolVersion,
	}, log)
	if err != nil {
		return err
	}

	res := resolver.New(client, resolver.Options{
		Lenient: flagLenient,
		Logger:  log,
	})

	components, err := res.Resolve(cmd.Context(), reqs)
	if err != nil {
		return fmt.Errorf("resolving requirements: %w", err)
	}

	deps := resolver.BuildDependencies(components)

	fmt.Fprintf(os.Stderr, "Resolved %d component(s)\n", len(components))

	opts := output.Options{
		Format:       format,
		ToolVersion:  toolVersion,
		Reproducible: flagReproducible,
	}
	if err := output.Write(components, deps, opts, flagOutput); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	if flagOutput != "-" {
		fmt.Fprintf(os.Stderr, "BOM written to: %s\n", flagOutput)
	}

	if flagTree != "" {
		if err := output.WriteDependencyTree(components, deps, flagTree); err != nil {
			return fmt.Errorf("failed to write dependency tree: %w", err)
		}
	}

	return nil
}
