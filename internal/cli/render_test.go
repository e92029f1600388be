package cli

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/netweave/netweave/pkg/config"
	"github.com/netweave/netweave/pkg/pipeline"
)

func TestApplyConfigDefaults(t *testing.T) {
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	flags := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flags.IntVar(&opts.Steps, "steps", opts.Steps, "")
	flags.Uint64Var(&opts.Seed, "seed", opts.Seed, "")
	flags.Float64Var(&opts.Scale, "scale", opts.Scale, "")
	if err := flags.Set("steps", "25"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Layout.Steps = 100
	cfg.Layout.Seed = 9

	applyConfigDefaults(flags, &opts, cfg)

	if opts.Steps != 25 {
		t.Errorf("Steps = %d, explicit flag should win over config", opts.Steps)
	}
	if opts.Seed != 9 {
		t.Errorf("Seed = %d, want config value 9", opts.Seed)
	}
	if opts.Scale != pipeline.DefaultScale {
		t.Errorf("Scale = %g, want config default %g", opts.Scale, pipeline.DefaultScale)
	}
	if !opts.UsePositions {
		t.Error("UsePositions should stay enabled by default")
	}
}
