// Package main provides the huginn CLI entry point.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/orneryd/huginn/pkg/config"
	"github.com/orneryd/huginn/pkg/dataset"
	"github.com/orneryd/huginn/pkg/model"
	"github.com/orneryd/huginn/pkg/pca"
	"github.com/orneryd/huginn/pkg/store"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

func main() {
	var cfgPath string
	cfg := config.LoadFromEnv()

	rootCmd := &cobra.Command{
		Use:   "huginn",
		Short: "Huginn - PCA dimensionality reduction for CSV datasets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := cfgPath
			if path == "" {
				path = config.FindConfigFile()
			}
			loaded, err := config.LoadFromFile(path)
			if err != nil {
				return err
			}
			// Flags win over file and env values.
			if !cmd.Flags().Changed("components") {
				cfg.Components = loaded.Components
			}
			if !cmd.Flags().Changed("data-dir") {
				cfg.DataDir = loaded.DataDir
			}
			if !cmd.Flags().Changed("model") && cfg.Model == "" {
				cfg.Model = loaded.Model
			}
			cfg.Center = loaded.Center
			cfg.Seed = loaded.Seed
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to huginn.yaml")
	rootCmd.PersistentFlags().IntVar(&cfg.Components, "components", cfg.Components, "Number of principal components to keep")
	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Model registry directory")
	rootCmd.PersistentFlags().StringVar(&cfg.Model, "model", cfg.Model, "Model JSON file path")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("huginn %s (%s, built %s)\n", version, commit, buildTime)
		},
	})

	var fitStore bool
	fitCmd := &cobra.Command{
		Use:   "fit [input.csv]",
		Short: "Fit a PCA model on a CSV dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cfg, args[0], fitStore)
		},
	}
	fitCmd.Flags().BoolVar(&fitStore, "store", false, "Also store the model in the registry")
	rootCmd.AddCommand(fitCmd)

	var modelID, output string
	var noCenter bool
	projectCmd := &cobra.Command{
		Use:   "project [input.csv]",
		Short: "Project a CSV dataset into the reduced space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cfg, args[0], output, modelID, !noCenter, false)
		},
	}
	projectCmd.Flags().StringVar(&output, "output", "reduced.csv", "Output CSV path")
	projectCmd.Flags().StringVar(&modelID, "id", "", "Model ID in the registry (instead of --model)")
	projectCmd.Flags().BoolVar(&noCenter, "no-center", false, "Skip subtracting the fitted mean before projecting")
	rootCmd.AddCommand(projectCmd)

	var invOutput, invModelID string
	var invNoCenter bool
	inverseCmd := &cobra.Command{
		Use:   "inverse [reduced.csv]",
		Short: "Reconstruct a reduced CSV dataset back to feature space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cfg, args[0], invOutput, invModelID, !invNoCenter, true)
		},
	}
	inverseCmd.Flags().StringVar(&invOutput, "output", "reconstructed.csv", "Output CSV path")
	inverseCmd.Flags().StringVar(&invModelID, "id", "", "Model ID in the registry (instead of --model)")
	inverseCmd.Flags().BoolVar(&invNoCenter, "no-center", false, "Skip adding the fitted mean after reconstructing")
	rootCmd.AddCommand(inverseCmd)

	var varModelID string
	varianceCmd := &cobra.Command{
		Use:   "variance",
		Short: "Report explained variance of a fitted model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVariance(cfg, varModelID)
		},
	}
	varianceCmd.Flags().StringVar(&varModelID, "id", "", "Model ID in the registry (instead of --model)")
	rootCmd.AddCommand(varianceCmd)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Model registry operations",
	}
	modelsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelsList(cfg)
		},
	})
	modelsCmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelsDelete(cfg, args[0])
		},
	})
	rootCmd.AddCommand(modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFit(cfg *config.Config, input string, toStore bool) error {
	x, header, err := dataset.LoadCSV(input)
	if err != nil {
		return err
	}
	rows, cols := x.Dims()
	log.Printf("Loaded %s: %d rows, %d features", input, rows, cols)
	if header != nil {
		log.Printf("Header: %v", header)
	}

	r, err := pca.New(cfg.Components)
	if err != nil {
		return err
	}
	if _, err := r.Fit(x); err != nil {
		return err
	}
	ratio, err := r.ExplainedVariance()
	if err != nil {
		return err
	}
	log.Printf("Fitted %d components, explained variance %.4f", cfg.Components, ratio)

	m, err := model.FromReducer(r)
	if err != nil {
		return err
	}
	if cfg.Model != "" {
		if err := m.Save(cfg.Model); err != nil {
			return err
		}
		log.Printf("Model written to %s", cfg.Model)
	}
	if toStore {
		reg, err := store.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer reg.Close()
		id, err := reg.Put(m)
		if err != nil {
			return err
		}
		log.Printf("Model stored in registry as %s", id)
	}
	if cfg.Model == "" && !toStore {
		return fmt.Errorf("nowhere to put the model: set --model or --store")
	}
	return nil
}

// runApply runs project or inverse depending on the invert flag.
func runApply(cfg *config.Config, input, output, modelID string, center, invert bool) error {
	r, err := loadReducer(cfg, modelID)
	if err != nil {
		return err
	}
	x, _, err := dataset.LoadCSV(input)
	if err != nil {
		return err
	}

	var out *mat.Dense
	switch {
	case invert && center:
		out, err = r.InverseCentered(x)
	case invert:
		out, err = r.Inverse(x)
	case center:
		out, err = r.ProjectCentered(x)
	default:
		out, err = r.Project(x)
	}
	if err != nil {
		return err
	}
	if err := dataset.SaveCSV(output, out, nil); err != nil {
		return err
	}
	rows, cols := out.Dims()
	log.Printf("Wrote %s: %d rows, %d columns", output, rows, cols)
	return nil
}

func runVariance(cfg *config.Config, modelID string) error {
	r, err := loadReducer(cfg, modelID)
	if err != nil {
		return err
	}
	eigenvalues := r.Eigenvalues()
	var total float64
	for _, v := range eigenvalues {
		total += v
	}
	ratio, err := r.ExplainedVariance()
	if err != nil {
		return err
	}
	fmt.Printf("components: %d of %d\n", r.NumComponents(), r.NumFeatures())
	fmt.Printf("explained variance: %.6f\n", ratio)
	var cumulative float64
	for i, v := range eigenvalues {
		cumulative += v
		fmt.Printf("  k=%d  eigenvalue=%.6g  cumulative=%.6f\n", i+1, v, cumulative/total)
	}
	return nil
}

func runModelsList(cfg *config.Config) error {
	reg, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer reg.Close()
	infos, err := reg.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no models stored")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  components=%d  features=%d  created=%s\n",
			info.ID, info.NumComponents, info.NumFeatures, info.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runModelsDelete(cfg *config.Config, id string) error {
	reg, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer reg.Close()
	if err := reg.Delete(id); err != nil {
		return err
	}
	log.Printf("Deleted model %s", id)
	return nil
}

// loadReducer revives a fitted reducer from --model or the registry.
func loadReducer(cfg *config.Config, modelID string) (*pca.Reducer, error) {
	var m *model.Model
	var err error
	switch {
	case modelID != "":
		reg, openErr := store.Open(cfg.DataDir)
		if openErr != nil {
			return nil, openErr
		}
		defer reg.Close()
		m, err = reg.Get(modelID)
	case cfg.Model != "":
		m, err = model.Load(cfg.Model)
	default:
		return nil, fmt.Errorf("no model given: set --model or --id")
	}
	if err != nil {
		return nil, err
	}
	return m.ToReducer()
}
