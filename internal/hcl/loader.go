package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the checker and manifest files found under paths. Check blocks are
// evaluated against rc; checker blocks become manifests. Paths that do not
// exist are skipped.
func (l *Loader) Load(ctx context.Context, rc config.RunContext, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findConfigFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered configuration files.", "count", len(files))

	model := config.NewModel()
	parser := hclparse.NewParser()
	seenChecks := make(map[string]string)

	for _, file := range files {
		parsed, diags := parseFile(parser, file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(parsed.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}

		dir, err := filepath.Abs(filepath.Dir(file))
		if err != nil {
			return nil, nil, err
		}
		evalCtx := newEvalContext(rc, dir)

		for _, b := range root.Checkers {
			if prev, ok := model.Manifests[b.Name]; ok {
				return nil, nil, fmt.Errorf("checker %q declared in both %s and %s", b.Name, prev.File, file)
			}
			m, err := l.translateManifest(b, file)
			if err != nil {
				return nil, nil, err
			}
			model.Manifests[m.Name] = m
		}
		for _, b := range root.Checks {
			if prev, ok := seenChecks[b.Name]; ok {
				return nil, nil, fmt.Errorf("check %q declared in both %s and %s", b.Name, prev, file)
			}
			seenChecks[b.Name] = file
			check, err := l.translateCheck(ctx, b, dir, evalCtx)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Checks = append(model.Checks, check)
		}
	}

	logger.Debug("HCL loading complete.", "checks", len(model.Checks), "manifests", len(model.Manifests))
	return model, NewConverter(), nil
}

// parseFile picks the native or JSON parser by file extension.
func parseFile(parser *hclparse.Parser, file string) (*hcl.File, hcl.Diagnostics) {
	if filepath.Ext(file) == ".json" {
		return parser.ParseJSONFile(file)
	}
	return parser.ParseHCLFile(file)
}

// findConfigFiles returns every configuration file below paths, without
// duplicates and in a stable order. Directories are searched for .hcl files
// only, since they may also hold JSON rule tables; a JSON checker file must be
// named explicitly.
func findConfigFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		path = filepath.Clean(path)
		extensions := []string{".hcl"}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			extensions = append(extensions, ".json")
		}
		found, err := fsutil.FindFilesByExtension(path, extensions...)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	return all, nil
}
