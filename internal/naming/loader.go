package naming

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/fullrom/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// fileRoot is the top-level structure of a scheme file.
type fileRoot struct {
	Schemes []*schemeBlock `hcl:"scheme,block"`
}

// schemeBlock mirrors a `scheme "<name>" { ... }` block.
type schemeBlock struct {
	Name      string   `hcl:"name,label"`
	Pattern   string   `hcl:"pattern"`
	TagOffset *int     `hcl:"tag_offset,optional"`
	Delimiter string   `hcl:"delimiter,optional"`
	Exclude   []string `hcl:"exclude,optional"`
}

// evalContext exposes the dump markers and a few string helpers to scheme files:
//
//	exclude = [marker.alternate, marker.overdump, upper("[h]")]
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"marker": cty.ObjectVal(map[string]cty.Value{
				"alternate": cty.StringVal(MarkerAlternate),
				"overdump":  cty.StringVal(MarkerOverdump),
				"bad":       cty.StringVal(MarkerBad),
				"hack":      cty.StringVal(MarkerHack),
				"trained":   cty.StringVal(MarkerTrained),
			}),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"concat": stdlib.ConcatFunc,
		},
	}
}

// LoadFile reads an HCL scheme file and returns base extended with its schemes.
func LoadFile(ctx context.Context, base Table, path string) (Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read scheme file %s: %w", path, err)
	}
	return Load(ctx, base, path, src)
}

// Load parses HCL scheme definitions from src. filename is used in diagnostics.
func Load(ctx context.Context, base Table, filename string, src []byte) (Table, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Scheme loader started.", "file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Table{}, fmt.Errorf("failed to parse scheme file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(), &root)
	if diags.HasErrors() {
		return Table{}, fmt.Errorf("failed to decode scheme file %s: %w", filename, diags)
	}

	schemes := make([]Scheme, 0, len(root.Schemes))
	for _, b := range root.Schemes {
		s := Scheme{
			Name:      b.Name,
			Pattern:   b.Pattern,
			TagOffset: -1,
			Delimiter: b.Delimiter,
			Exclude:   b.Exclude,
		}
		if b.TagOffset != nil {
			s.TagOffset = *b.TagOffset
		}
		schemes = append(schemes, s)
	}

	t, err := base.With(schemes...)
	if err != nil {
		return Table{}, fmt.Errorf("scheme file %s: %w", filename, err)
	}
	logger.Debug("Scheme file loaded.", "file", filename, "schemes", len(schemes))
	return t, nil
}
