// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/aamu-gdg/bulletin-fetcher/pkg/types"
)

// RunExport is the YAML document written by ExportYAML.
type RunExport struct {
	Run       Run              `yaml:"run"`
	Bulletins []types.Bulletin `yaml:"bulletins"`
}

// Run returns the run with the given ID.
func (s *Store) Run(ctx context.Context, runID string) (Run, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return Run{}, err
	}
	for _, r := range runs {
		if r.ID == runID {
			return r, nil
		}
	}
	return Run{}, fmt.Errorf("run %s not found", runID)
}

// ExportYAML writes runID and its bulletins to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, runID string, w io.Writer) error {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return err
	}
	bulletins, err := s.Bulletins(ctx, runID)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(RunExport{Run: run, Bulletins: bulletins}); err != nil {
		return fmt.Errorf("encoding run %s: %w", runID, err)
	}
	return enc.Close()
}
