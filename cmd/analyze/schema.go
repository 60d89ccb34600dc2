package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-signals/internal/analysis"
	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/utils"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	configSchemaName = "analyze-config.json"
	sampleConfigName = "config.yaml"
)

// schemaFiles maps each generated file name to its schema generator.
var schemaFiles = []struct {
	name     string
	generate func() (string, error)
}{
	{configSchemaName, func() (string, error) { return utils.ToYAMLSchema(config.Config{}) }},
	{"asset-analysis.json", func() (string, error) { return utils.ToJSONSchema(types.AssetAnalysis{}) }},
	{"batch-analysis-result.json", func() (string, error) { return utils.ToJSONSchema(types.BatchAnalysisResult{}) }},
	{"indicator-snapshot.json", func() (string, error) { return utils.ToJSONSchema(analysis.IndicatorSnapshot{}) }},
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	return writeSchemas(cmd.String("out"), cmd.Root().Writer)
}

// writeSchemas writes every schema into dir and a sample configuration when
// none exists yet.
func writeSchemas(dir string, log io.Writer) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, file := range schemaFiles {
		schema, err := file.generate()
		if err != nil {
			return fmt.Errorf("failed to generate %s: %w", file.name, err)
		}

		path := filepath.Join(dir, file.name)
		if err := os.WriteFile(path, []byte(schema), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Fprintf(log, "Schema generated at %s\n", path)
	}

	samplePath := filepath.Join(dir, sampleConfigName)
	if _, err := os.Stat(samplePath); !os.IsNotExist(err) {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+configSchemaName+"\n"), yamlBytes...)
	if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}

	fmt.Fprintf(log, "Sample config generated at %s\n", samplePath)

	return nil
}
