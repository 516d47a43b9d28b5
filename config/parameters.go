// Package config defines the model parameter file and its validation.
package config

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/stratus-model/stratus/model"
)

// Parameters is the YAML model configuration.
type Parameters struct {
	Title           string  `yaml:"Title"`
	Case            string  `yaml:"Case"`
	ResolutionX     int     `yaml:"ResolutionX"`
	ResolutionY     int     `yaml:"ResolutionY"`
	Levels          int     `yaml:"Levels"`
	HorizontalOrder int     `yaml:"HorizontalOrder"`
	VerticalOrder   int     `yaml:"VerticalOrder"`
	DeltaT          float64 `yaml:"DeltaT"`
	OutputDeltaT    float64 `yaml:"OutputDeltaT"`
	EndTime         float64 `yaml:"EndTime"`
	OutputDir       string  `yaml:"OutputDir"`
	TimeScheme      string  `yaml:"TimeScheme"`
	Staggering      string  `yaml:"Staggering"`
	VelocityRep     string  `yaml:"VelocityRep"`
	VerticalStretch string  `yaml:"VerticalStretch"`
	StretchRefine   float64 `yaml:"StretchRefine"`
	ReferenceLength float64 `yaml:"ReferenceLength"`
	NuScalar        float64 `yaml:"NuScalar"`
	NuDiv           float64 `yaml:"NuDiv"`
	RefLat          float64 `yaml:"RefLat"`
	PatchesX        int     `yaml:"PatchesX"`
	PatchesY        int     `yaml:"PatchesY"`
	SubtractRef     bool    `yaml:"SubtractReference" json:"SubtractReference"`
	Diagnostics     bool    `yaml:"Diagnostics"`
	// Map of named BC overrides per side, e.g. {"x": "periodic"}
	BCs map[string]string `yaml:"BCs"`
}

func (p *Parameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, p); err != nil {
		return model.Errorf(model.ConfigurationError, "parsing parameters: %v", err)
	}
	return nil
}

// Validate checks the surface-level constraints before grid construction.
func (p *Parameters) Validate() error {
	if p.ResolutionX < 1 || p.ResolutionY < 1 || p.Levels < 1 {
		return model.Errorf(model.ConfigurationError,
			"invalid resolution %dx%dx%d", p.ResolutionX, p.ResolutionY, p.Levels)
	}
	if p.DeltaT <= 0 || p.EndTime < 0 {
		return model.Errorf(model.ConfigurationError,
			"invalid time parameters dt=%v end=%v", p.DeltaT, p.EndTime)
	}
	if p.VerticalOrder < 1 {
		return model.Errorf(model.ConfigurationError,
			"vertical order %d must be positive", p.VerticalOrder)
	}
	if p.Levels%p.VerticalOrder != 0 {
		return model.Errorf(model.ConfigurationError,
			"levels %d not divisible by vertical order %d", p.Levels, p.VerticalOrder)
	}
	return nil
}

// Periodic reports whether the named lateral axis is periodic (default) or
// reflective.
func (p *Parameters) Periodic(axis string) bool {
	if p.BCs == nil {
		return true
	}
	bc, ok := p.BCs[axis]
	if !ok {
		return true
	}
	return bc != "reflective"
}

func (p *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", p.Title)
	fmt.Printf("[%s]\t\t\t= Case\n", p.Case)
	fmt.Printf("%d x %d x %d\t\t= Resolution\n", p.ResolutionX, p.ResolutionY, p.Levels)
	fmt.Printf("[%d/%d]\t\t\t= Horizontal/Vertical Order\n", p.HorizontalOrder, p.VerticalOrder)
	fmt.Printf("%8.5f\t\t= DeltaT\n", p.DeltaT)
	fmt.Printf("%8.2f\t\t= EndTime\n", p.EndTime)
	fmt.Printf("[%s]\t\t= Time Scheme\n", p.TimeScheme)
	keys := make([]string, 0, len(p.BCs))
	for k := range p.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, p.BCs[key])
	}
}

// Default returns the thermal bubble configuration.
func Default() Parameters {
	return Parameters{
		Title:           "Thermal rising bubble",
		Case:            "bubble",
		ResolutionX:     36,
		ResolutionY:     1,
		Levels:          72,
		HorizontalOrder: 4,
		VerticalOrder:   1,
		DeltaT:          0.01,
		OutputDeltaT:    10,
		EndTime:         700,
		OutputDir:       "output",
		TimeScheme:      "ark2",
		ReferenceLength: 1100000.0,
		NuScalar:        1.0,
		NuDiv:           1.0,
	}
}
