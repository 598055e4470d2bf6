package collector

import (
	"context"
	"errors"
	"os"
	"os/exec"
)

// SMIStrategy shells out to nvidia-smi for a single field per call. The
// first output line is returned verbatim, even when it is an error message
// printed by the tool itself.
type SMIStrategy struct {
	path   string
	runner Runner
}

func NewSMIStrategy(path string, runner Runner) *SMIStrategy {
	return &SMIStrategy{path: path, runner: runner}
}

func (s *SMIStrategy) Source() string { return "nvidia-smi" }

func (s *SMIStrategy) Name(ctx context.Context) (string, error) {
	return s.query(ctx, "name")
}

func (s *SMIStrategy) Utilization(ctx context.Context) (string, error) {
	return s.query(ctx, "utilization.gpu")
}

func (s *SMIStrategy) Temperature(ctx context.Context) (string, error) {
	return s.query(ctx, "temperature.gpu")
}

func (s *SMIStrategy) query(ctx context.Context, field string) (string, error) {
	out, err := s.runner.Run(ctx, s.path, "--query-gpu="+field, "--format=csv,noheader")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", notInstalled(s.Source())
		}
		return "", queryFailed(s.Source(), err)
	}

	line := firstLine(out)
	if line == "" {
		return "", unavailable(s.Source(), errors.New("empty output for "+field))
	}
	return line, nil
}
