package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cathexis-net/cathexis/internal/categorizer"
	"github.com/cathexis-net/cathexis/internal/model"
)

// paramsFile mirrors model.Params in YAML-friendly field names.
type paramsFile struct {
	K             float64   `yaml:"k"`
	WPos          []float64 `yaml:"w_pos"`
	WNeg          []float64 `yaml:"w_neg"`
	DecayBeta     []float64 `yaml:"decay_beta"`
	DampingLambda float64   `yaml:"damping_lambda"`
	WitnessTopK   int       `yaml:"witness_top_k"`
	BaseRate      float64   `yaml:"base_rate"`
}

// LoadParams reads and validates engine Params from a YAML file.
func LoadParams(path string) (model.Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Params{}, fmt.Errorf("config: read params file %q: %w", path, err)
	}
	var pf paramsFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return model.Params{}, fmt.Errorf("config: parse params file %q: %w", path, err)
	}
	p, err := model.NewParams(model.Params{
		K:             pf.K,
		WPos:          pf.WPos,
		WNeg:          pf.WNeg,
		DecayBeta:     pf.DecayBeta,
		DampingLambda: pf.DampingLambda,
		WitnessTopK:   pf.WitnessTopK,
		BaseRate:      pf.BaseRate,
	})
	if err != nil {
		return model.Params{}, fmt.Errorf("config: invalid params file %q: %w", path, err)
	}
	return p, nil
}

// mlpWeightsFile mirrors a pre-trained MLP's weight matrices.
type mlpWeightsFile struct {
	InputDim      int         `yaml:"input_dim"`
	HiddenDim     int         `yaml:"hidden_dim"`
	CategoryCount int         `yaml:"category_count"`
	W1            [][]float64 `yaml:"w1"`
	B1            []float64   `yaml:"b1"`
	W2            [][]float64 `yaml:"w2"`
	B2            []float64   `yaml:"b2"`
}

// LoadCategorizer reads pre-trained MLP weights from a YAML file.
func LoadCategorizer(path string) (*categorizer.MLP, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read categorizer file %q: %w", path, err)
	}
	var wf mlpWeightsFile
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("config: parse categorizer file %q: %w", path, err)
	}
	mlp, err := categorizer.NewMLP(wf.InputDim, wf.HiddenDim, wf.CategoryCount, wf.W1, wf.B1, wf.W2, wf.B2)
	if err != nil {
		return nil, fmt.Errorf("config: invalid categorizer file %q: %w", path, err)
	}
	return mlp, nil
}
