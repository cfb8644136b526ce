// Package hcl_adapter loads engine descriptions written in HCL and
// translates them into the format-agnostic configuration model.
package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/turbocycle/internal/config"
	"github.com/vk/turbocycle/internal/ctxlog"
	"github.com/vk/turbocycle/internal/registry"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all recognized top-level blocks from any file. Blocks
// may be spread across multiple files; they are merged in file order.
type fileRoot struct {
	Cycle      *config.Cycle            `hcl:"cycle,block"`
	Elements   []*elementBlock          `hcl:"element,block"`
	Flows      []*config.FlowConnection `hcl:"flow,block"`
	ShaftPairs []*config.ShaftPair      `hcl:"shaft_pair,block"`
	Balances   []*config.BalanceDecl    `hcl:"balance,block"`
	Sweep      *sweepBlock              `hcl:"sweep,block"`
	Remain     hcl.Body                 `hcl:",remain"`
}

// elementBlock is an element declaration before its kind-specific body has
// been decoded. The two labels carry the kind tag and the element name.
type elementBlock struct {
	Kind string   `hcl:"kind,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type sweepBlock struct {
	PowerCodes []float64             `hcl:"power_codes,optional"`
	Conditions []*config.FlightPoint `hcl:"condition,block"`
}

// evalContext exposes unit-conversion constants to expressions in engine
// descriptions, so metric inputs can be written as e.g. `10.668 * ft_per_km`.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"ft_per_km":   cty.NumberFloatVal(3280.84),
			"lbf_per_kn":  cty.NumberFloatVal(224.809),
			"deg_r_per_k": cty.NumberFloatVal(1.8),
			"lbm_per_kg":  cty.NumberFloatVal(2.20462),
		},
	}
}

// Load parses every .hcl file under the given paths and merges the blocks
// into one model. It is agnostic to the origin of the paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Cycle != nil {
			if model.Cycle != nil {
				return nil, fmt.Errorf("file %s: duplicate cycle block (already declared as %q)", file, model.Cycle.Name)
			}
			model.Cycle = root.Cycle
		}
		for _, eb := range root.Elements {
			el, err := l.translateElement(eb)
			if err != nil {
				return nil, fmt.Errorf("file %s: %w", file, err)
			}
			model.Elements = append(model.Elements, el)
		}
		model.Flows = append(model.Flows, root.Flows...)
		model.ShaftPairs = append(model.ShaftPairs, root.ShaftPairs...)
		model.Balances = append(model.Balances, root.Balances...)
		if root.Sweep != nil {
			if model.Sweep != nil {
				return nil, fmt.Errorf("file %s: duplicate sweep block", file)
			}
			model.Sweep = &config.Sweep{
				Conditions: root.Sweep.Conditions,
				PowerCodes: root.Sweep.PowerCodes,
			}
		}
	}

	if model.Cycle == nil {
		return nil, fmt.Errorf("no cycle block found in %d file(s)", len(hclFiles))
	}
	logger.Debug("HCL loading complete.",
		"elements", len(model.Elements), "flows", len(model.Flows),
		"shaft_pairs", len(model.ShaftPairs), "balances", len(model.Balances))
	return model, nil
}

// translateElement decodes the kind-specific body of an element block into
// its attribute struct. The kind tag selects the schema; unrecognized
// attributes fail here, at decode time.
func (l *Loader) translateElement(eb *elementBlock) (*config.Element, error) {
	kind, err := registry.ParseKind(eb.Name, eb.Kind)
	if err != nil {
		return nil, err
	}
	spec := newSpec(kind)
	if diags := gohcl.DecodeBody(eb.Body, evalContext(), spec); diags.HasErrors() {
		return nil, fmt.Errorf("element %q: %w", eb.Name, diags)
	}
	return &config.Element{Kind: eb.Kind, Name: eb.Name, Spec: spec}, nil
}

// newSpec returns a zero attribute struct for the kind. ParseKind has
// already rejected unknown tags.
func newSpec(kind registry.Kind) any {
	switch kind {
	case registry.KindFlightConditions:
		return &config.FlightConditionsSpec{}
	case registry.KindInlet:
		return &config.InletSpec{}
	case registry.KindCompressor:
		return &config.CompressorSpec{}
	case registry.KindTurbine:
		return &config.TurbineSpec{}
	case registry.KindSplitter:
		return &config.SplitterSpec{}
	case registry.KindDuct:
		return &config.DuctSpec{}
	case registry.KindCombustor:
		return &config.CombustorSpec{}
	case registry.KindNozzle:
		return &config.NozzleSpec{}
	case registry.KindShaft:
		return &config.ShaftSpec{}
	case registry.KindBleed:
		return &config.BleedSpec{}
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
