package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/soypat/glnode"
	"github.com/soypat/glnode/glbuild"
	"github.com/soypat/glnode/glverify"
	"github.com/soypat/glnode/nodejson"
	"github.com/spf13/cobra"
)

type compileFlags struct {
	fragment, vertex, compute string
	backend                   string
	config                    string
	out                       string
	validate                  bool
	spirv                     bool
}

func newCompileCmd() *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile node graphs to a shader program",
		Long: "Compile reads JSON node graphs for the fragment, vertex or compute stage and\n" +
			"writes the generated program. A fragment graph without a vertex graph uses the\n" +
			"default modelViewProjection * position vertex program.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.OutOrStdout(), flags)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.fragment, "fragment", "f", "", "Fragment output color graph")
	f.StringVar(&flags.vertex, "vertex", "", "Vertex clip position graph")
	f.StringVar(&flags.compute, "compute", "", "Compute graph")
	f.StringVarP(&flags.backend, "backend", "b", "", "Output language: glsl or wgsl")
	f.StringVarP(&flags.config, "config", "c", "", "YAML builder configuration")
	f.StringVarP(&flags.out, "out", "o", "", "Output directory. Sources are written to stdout if empty")
	f.BoolVar(&flags.validate, "validate", false, "Validate generated sources with naga (wgsl) or an OpenGL context (glsl)")
	f.BoolVar(&flags.spirv, "spirv", false, "Also write SPIR-V modules. Requires wgsl and an output directory")
	return cmd
}

func runCompile(w io.Writer, flags compileFlags) error {
	if flags.fragment == "" && flags.vertex == "" && flags.compute == "" {
		return errors.New("no input graph: use --fragment, --vertex or --compute")
	}
	fc, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	cfg, err := fc.builderConfig(flags.backend)
	if err != nil {
		return err
	}
	if flags.spirv && (cfg.Language != glbuild.WGSL || flags.out == "") {
		return errors.New("--spirv requires wgsl backend and --out")
	}
	b, err := glbuild.New(cfg)
	if err != nil {
		return err
	}
	for _, in := range []struct {
		stage glnode.ShaderStage
		path  string
	}{
		{glnode.ShaderStageVertex, flags.vertex},
		{glnode.ShaderStageFragment, flags.fragment},
		{glnode.ShaderStageCompute, flags.compute},
	} {
		if in.path == "" {
			continue
		}
		root, err := readGraph(in.path)
		if err != nil {
			return err
		}
		b.AddFlow(in.stage, root)
	}
	prog, err := b.Build()
	if err != nil {
		return err
	}
	if flags.validate {
		if err := validateProgram(prog); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return writeProgram(w, prog, flags.out, flags.spirv)
}

// readGraph decodes the single root graph of a nodejson file.
func readGraph(path string) (glnode.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	roots, err := nodejson.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("%s: want one root graph, got %d", path, len(roots))
	}
	return roots[0], nil
}

func validateProgram(prog *glbuild.Program) error {
	if prog.Language == glbuild.WGSL {
		var errs []error
		for _, stage := range glnode.ShaderStages {
			if src := prog.Source(stage); src != "" {
				if err := glbuild.ValidateWGSL(src); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", stage, err))
				}
			}
		}
		return errors.Join(errs...)
	}
	ctx, err := glverify.NewContext()
	if err != nil {
		return err
	}
	defer ctx.Close()
	return ctx.Verify(prog)
}

func writeProgram(w io.Writer, prog *glbuild.Program, dir string, spirv bool) error {
	ext := "." + prog.Language.String()
	for _, stage := range glnode.ShaderStages {
		src := prog.Source(stage)
		if src == "" {
			continue
		}
		name := stage.String() + ext
		if dir == "" {
			fmt.Fprintf(w, "// %s\n%s\n", name, src)
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			return err
		}
		if spirv {
			bin, err := prog.SPIRV(stage)
			if err != nil {
				return fmt.Errorf("%s: %w", stage, err)
			}
			if err := os.WriteFile(filepath.Join(dir, stage.String()+".spv"), bin, 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}
