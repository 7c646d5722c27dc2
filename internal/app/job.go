package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Job holds the convert options read from a job file. Nil fields were not
// set in the file.
//
//	convert {
//	  rom_path     = "carts"
//	  fullrom_path = "${env("HOME")}/fullroms"
//	  scheme       = "V9T9"
//	  check        = true
//	}
type Job struct {
	RomPath       *string `hcl:"rom_path,optional"`
	OutputDir     *string `hcl:"fullrom_path,optional"`
	SystemRomPath *string `hcl:"systemrom_path,optional"`
	Scheme        *string `hcl:"scheme,optional"`
	SchemesFile   *string `hcl:"schemes_file,optional"`
	ListingPath   *string `hcl:"listing,optional"`

	Simulate *bool `hcl:"simulate,optional"`
	Checksum *bool `hcl:"check,optional"`
	DiskIO   *bool `hcl:"disk_io,optional"`
	Speech   *bool `hcl:"speech,optional"`
	Verbose  *bool `hcl:"verbose,optional"`
}

type jobRoot struct {
	Convert *Job `hcl:"convert,block"`
}

var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "name", Type: cty.String}},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func jobEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env":   envFunc,
			"upper": stdlib.UpperFunc,
			"lower": stdlib.LowerFunc,
		},
	}
}

// LoadJob reads a job file. Relative paths in it are resolved against the
// directory of the file.
func LoadJob(path string) (*Job, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read job file %s: %w", ErrInvalidConfig, path, err)
	}

	file, diags := hclparse.NewParser().ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse job file %s: %w", ErrInvalidConfig, path, diags)
	}

	var root jobRoot
	if diags := gohcl.DecodeBody(file.Body, jobEvalContext(), &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode job file %s: %w", ErrInvalidConfig, path, diags)
	}
	if root.Convert == nil {
		return nil, fmt.Errorf("%w: job file %s has no convert block", ErrInvalidConfig, path)
	}

	job := root.Convert
	dir := filepath.Dir(path)
	for _, p := range []*string{job.RomPath, job.OutputDir, job.SystemRomPath, job.SchemesFile, job.ListingPath} {
		if p != nil && *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return job, nil
}

// Apply copies the job's settings into cfg. Settings for which explicit
// reports true were given on the command line and are left alone.
func (j *Job) Apply(cfg *Config, explicit func(setting string) bool) {
	str := func(setting string, v *string, dst *string) {
		if v != nil && !explicit(setting) {
			*dst = *v
		}
	}
	flag := func(setting string, v *bool, dst *bool) {
		if v != nil && !explicit(setting) {
			*dst = *v
		}
	}

	str("rom-path", j.RomPath, &cfg.RomPath)
	str("fullrom-path", j.OutputDir, &cfg.OutputDir)
	str("systemrom-path", j.SystemRomPath, &cfg.SystemRomPath)
	str("scheme", j.Scheme, &cfg.Scheme)
	str("schemes-file", j.SchemesFile, &cfg.SchemesFile)
	str("listing", j.ListingPath, &cfg.ListingPath)

	flag("simulate", j.Simulate, &cfg.Simulate)
	flag("check", j.Checksum, &cfg.Checksum)
	flag("disk-io", j.DiskIO, &cfg.Features.DiskIO)
	flag("speech", j.Speech, &cfg.Features.Speech)
	flag("verbose", j.Verbose, &cfg.Verbose)
}
