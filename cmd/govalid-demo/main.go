// Command govalid-demo validates a JSON document against a Go struct's
// declared constraints and prints the resulting violations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/SimonDaKappa/govalid"
)

// Person is the demo's sample validated struct; real consumers of govalid
// declare their own bean types instead.
type Person struct {
	ID    string `validate:"UUID"`
	Name  string `validate:"NotBlank"`
	Email string `validate:"NotBlank;Email"`
	Age   int    `validate:"Min(value=0);Max(value=130)"`
}

// parsePerson reads the flat top-level fields of a JSON document without
// requiring it to unmarshal cleanly into Person first, so a document with
// the wrong shape for a field still reaches validation with that field's
// zero value rather than failing at decode time.
func parsePerson(data []byte) Person {
	doc := gjson.ParseBytes(data)
	return Person{
		ID:    doc.Get("id").String(),
		Name:  doc.Get("name").String(),
		Email: doc.Get("email").String(),
		Age:   int(doc.Get("age").Int()),
	}
}

// loadConfig loads the YAML engine config at path, or falls back to
// govalid.DefaultEngineConfig() when no path was given. A path that fails to
// load is a startup failure, per spec.md §6.
func loadConfig(path string) (govalid.EngineConfig, error) {
	if path == "" {
		return govalid.DefaultEngineConfig(), nil
	}
	return govalid.LoadEngineConfig(path)
}

func buildEngine(cfg govalid.EngineConfig) (*govalid.Engine, error) {
	logger := govalid.NewLogger(slog.LevelWarn)

	defs := govalid.NewConstraintDefinitionRegistry()
	validators := govalid.NewValidatorRegistry()
	if err := govalid.RegisterBuiltinConstraints(defs, validators); err != nil {
		return nil, err
	}

	composer, err := govalid.NewAnnotationComposer(defs, validators.SupportedTargets, cfg.Constraints.Cache.Size)
	if err != nil {
		return nil, err
	}

	builder := govalid.NewBeanBuilder(govalid.ReflectiveSource{}, composer, govalid.NewValueExtractorRegistry())
	descriptors := govalid.NewDescriptorManager(builder.Build, logger)

	return &govalid.Engine{
		Descriptors:     descriptors,
		Validators:      validators,
		Composer:        composer,
		ValueExtractors: govalid.NewValueExtractorRegistry(),
		Traversable:     govalid.DefaultTraversableResolver,
		Interpolator:    govalid.DefaultInterpolator,
		Clock:           govalid.SystemClock,
		ParameterNames:  govalid.PositionalParameterNames,
	}, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var person Person
	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		person = parsePerson(data)
	}

	violations, err := engine.Validate(&person, cmd.StringSlice("group")...)
	if err != nil {
		return err
	}

	if len(violations) == 0 {
		fmt.Println("valid")
		return nil
	}
	for _, v := range violations {
		msg := engine.Interpolator.Interpolate(v.Template, v)
		fmt.Printf("%s: %s\n", v.Path.String(), msg)
	}
	return cli.Exit("validation failed", 1)
}

func main() {
	cmd := &cli.Command{
		Name:  "govalid-demo",
		Usage: "validate a sample document against its declared constraints",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "path to a JSON document to validate"},
			&cli.StringSliceFlag{Name: "group", Aliases: []string{"g"}, Usage: "validation group kinds to evaluate (default: Default)"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML engine config file (default: built-in defaults)"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
