package cmd

import (
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stratus-model/stratus/config"
	"github.com/stratus-model/stratus/dynamics"
	"github.com/stratus-model/stratus/eqset"
	"github.com/stratus-model/stratus/grid"
	"github.com/stratus-model/stratus/model"
	"github.com/stratus-model/stratus/output"
	"github.com/stratus-model/stratus/phys"
	"github.com/stratus-model/stratus/testcase"
	"github.com/stratus-model/stratus/timestep"
	"github.com/stratus-model/stratus/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a nonhydrostatic test case to completion",
	Long: `
Run a nonhydrostatic test case: bubble (Giraldo thermal rising bubble),
gravitywave (Skamarock-Klemp inertia-gravity wave) or schar (Schar mountain
waves with a Rayleigh sponge).`,
	Run: func(cmd *cobra.Command, args []string) {
		params := loadParameters(cmd)
		if err := runModel(params); err != nil {
			logrus.WithError(err).Error("run failed")
			if cat, ok := model.CategoryOf(err); ok {
				logrus.Errorf("error category: %v", cat)
			}
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	def := config.Default()
	runCmd.Flags().String("case", def.Case, "test case: bubble, gravitywave, schar")
	runCmd.Flags().Int("resolution_x", def.ResolutionX, "elements in x")
	runCmd.Flags().Int("resolution_y", def.ResolutionY, "elements in y")
	runCmd.Flags().Int("levels", def.Levels, "vertical levels")
	runCmd.Flags().Int("horizontal_order", def.HorizontalOrder, "GLL nodes per element edge")
	runCmd.Flags().Int("vertical_order", def.VerticalOrder, "vertical finite element order")
	runCmd.Flags().Float64("delta_t", def.DeltaT, "time step (s)")
	runCmd.Flags().Float64("output_delta_t", def.OutputDeltaT, "output interval (s)")
	runCmd.Flags().Float64("end_time", def.EndTime, "end time (s)")
	runCmd.Flags().String("output_dir", def.OutputDir, "output directory")
	runCmd.Flags().String("scheme", def.TimeScheme, "time scheme: strang, ark2, ark3, ark4")
	runCmd.Flags().Bool("profile", false, "write a CPU profile")

	must(viper.BindPFlags(runCmd.Flags()))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func loadParameters(cmd *cobra.Command) (params config.Parameters) {
	params = config.Default()
	if cfgFile != "" {
		data, err := os.ReadFile(cfgFile)
		if err == nil {
			must(params.Parse(data))
		}
	}
	params.Case = viper.GetString("case")
	params.ResolutionX = viper.GetInt("resolution_x")
	params.ResolutionY = viper.GetInt("resolution_y")
	params.Levels = viper.GetInt("levels")
	params.HorizontalOrder = viper.GetInt("horizontal_order")
	params.VerticalOrder = viper.GetInt("vertical_order")
	params.DeltaT = viper.GetFloat64("delta_t")
	params.OutputDeltaT = viper.GetFloat64("output_delta_t")
	params.EndTime = viper.GetFloat64("end_time")
	params.OutputDir = viper.GetString("output_dir")
	params.TimeScheme = viper.GetString("scheme")
	return
}

func resolveCase(name string) (testcase.TestCase, error) {
	switch name {
	case "", "bubble":
		return testcase.NewThermalBubble(), nil
	case "gravitywave":
		return testcase.NewGravityWave(), nil
	case "schar":
		return testcase.NewScharMountain(), nil
	}
	return nil, model.Errorf(model.ConfigurationError, "unknown test case %q", name)
}

func runModel(params config.Parameters) (err error) {
	if err = params.Validate(); err != nil {
		return
	}
	params.Print()

	tc, err := resolveCase(params.Case)
	if err != nil {
		return
	}
	scheme, err := timestep.ParseScheme(params.TimeScheme)
	if err != nil {
		return
	}
	stagger, err := parseStaggering(params.Staggering)
	if err != nil {
		return
	}

	log := logrus.WithField("case", tc.Name())

	cfg := grid.Config{
		Bounds:          tc.Bounds(),
		NElemA:          params.ResolutionX,
		NElemB:          params.ResolutionY,
		NLev:            params.Levels,
		HorizontalOrder: params.HorizontalOrder,
		VerticalOrder:   params.VerticalOrder,
		NPatchA:         params.PatchesX,
		NPatchB:         params.PatchesY,
		PeriodicA:       params.Periodic("x"),
		PeriodicB:       params.Periodic("y"),
		RefLat:          params.RefLat,
		ReferenceLength: params.ReferenceLength,
		Staggering:      stagger,
		StretchName:     params.VerticalStretch,
		StretchRefine:   params.StretchRefine,
		NumTracers:      tc.TracerCount(),
		NumStateSlots:   timestep.RequiredSlots(scheme),
	}

	g, err := grid.New(phys.New(), cfg, tc.ZTop(), log)
	if err != nil {
		return
	}
	g.InitializeData()
	if err = g.EvaluateTestCase(tc, 0, timestep.SlotActive); err != nil {
		return
	}
	g.ApplyDSS(timestep.SlotActive)
	g.ApplyBoundaryConditions(timestep.SlotActive)

	h := dynamics.NewHorizontal(g, params.NuScalar, params.NuDiv)
	v := dynamics.NewVertical(g, dynamics.DefaultSolverOptions())
	in, err := timestep.New(g, h, v, scheme, params.DeltaT, log)
	if err != nil {
		return
	}

	if err = os.MkdirAll(params.OutputDir, 0o755); err != nil {
		return model.WrapIO(err, "creating output directory %s", params.OutputDir)
	}
	out := output.NewManager(g, params.OutputDir, tc.Name(), params.SubtractRef, log)
	out.WithDiagnostics = params.Diagnostics
	if err = out.WriteFrame(timestep.SlotActive, 0); err != nil {
		return
	}

	timer := utils.NewTimer()
	nextOutput := params.OutputDeltaT
	for in.Time < params.EndTime-1.e-12 {
		timer.Time("step", func() { err = in.Step() })
		if err != nil {
			return
		}
		if in.Time+1.e-12 >= nextOutput {
			timer.Time("output", func() {
				err = out.WriteFrame(timestep.SlotActive, in.Time)
			})
			if err != nil {
				return
			}
			nextOutput += params.OutputDeltaT
		}
		if in.StepNum%100 == 0 {
			log.WithFields(logrus.Fields{
				"step": in.StepNum, "time": in.Time,
			}).Info("advanced")
		}
	}

	names, totals, counts := timer.Report()
	for ix, n := range names {
		log.WithFields(logrus.Fields{
			"total": totals[ix], "calls": counts[ix],
		}).Infof("timer %s", n)
	}

	reportErrorNorms(g, log)
	log.WithField("steps", in.StepNum).Info("simulation complete")
	return nil
}

func parseStaggering(name string) (model.VerticalStaggering, error) {
	switch name {
	case "", "cph", "charney-phillips":
		return model.StaggerCharneyPhillips, nil
	case "lev", "levels":
		return model.StaggerLevels, nil
	case "int", "interfaces":
		return model.StaggerInterfaces, nil
	}
	return 0, model.Errorf(model.ConfigurationError, "unknown staggering %q", name)
}

// reportErrorNorms logs L1, L2 and Linf norms of the state against the
// reference state.
func reportErrorNorms(g *grid.Grid, log *logrus.Entry) {
	if !g.HasRefState {
		return
	}
	for c := 0; c < eqset.NumComponents; c++ {
		var l1, l2, linf, vol float64
		for _, p := range g.Patches {
			field := p.Slot(timestep.SlotActive).Node[c]
			for k := 0; k < g.NLevels(); k++ {
				for i := p.Box.AInteriorBegin(); i < p.Box.AInteriorEnd(); i++ {
					for j := p.Box.BInteriorBegin(); j < p.Box.BInteriorEnd(); j++ {
						ij := p.IJ(i, j)
						diff := field.At(k, ij) - p.RefNode[c].At(k, ij)
						area := p.ElementArea.At(k, ij)
						l1 += area * math.Abs(diff)
						l2 += area * diff * diff
						vol += area
						if math.Abs(diff) > linf {
							linf = math.Abs(diff)
						}
					}
				}
			}
		}
		if vol > 0 {
			log.WithFields(logrus.Fields{
				"component": c,
				"L1":        l1 / vol,
				"L2":        math.Sqrt(l2 / vol),
				"Linf":      linf,
			}).Info("error norms vs reference state")
		}
	}
}
