package config

import "time"

// Default returns the Illinois corn / NOAA GSOM analysis pipeline
func Default() Config {
	return Config{
		Title:             "Climate Impact on Illinois Corn Production (1902-2025)",
		Root:              ".",
		Interpreter:       "python3",
		MinRuntimeVersion: "3.8",
		Packages: []string{
			"pandas", "numpy", "matplotlib", "seaborn",
			"scipy", "sklearn", "requests", "nbconvert",
		},
		RequirementsFile: "requirements.txt",
		Directories:      []string{"data/raw", "data/processed", "data/cleaned", "logs"},
		RequiredDirs:     []string{"Notebooks", "data", "data/raw"},
		LogDir:           "logs",
		Timeouts: TimeoutConfig{
			Step:  15 * time.Minute,
			Cell:  600 * time.Second,
			Check: 5 * time.Second,
		},
		ExcerptBytes: 500,
		FinalDataset: "data/cleaned/integrated_climate_corn.csv",
		Steps:        defaultSteps(),
		ManualInputs: []ManualInputConfig{
			{
				Name:          "NASS data",
				Kind:          ManualFile,
				Path:          "data/raw/nass_qs_1902_to_2025.csv",
				Description:   "NASS data must be downloaded manually",
				Documentation: "documentation/USDA_NASS_Data_Acquisition.md",
				Link:          "https://quickstats.nass.usda.gov/results/18E1C479-6BCF-3726-A3F5-2AAD423752F0",
			},
			{
				Name:        "GSOM acquisition notebook",
				Kind:        ManualFile,
				Path:        "Notebooks/01_GSOM_Acquisition.ipynb",
				Description: "01_GSOM_Acquisition.ipynb not found",
				Reminder:    "Ensure NOAA API token is set in 01_GSOM_Acquisition.ipynb",
			},
		},
	}
}

// Step 2 of the workflow is the manual NASS download, so numbering skips it.
func defaultSteps() []Step {
	return []Step{
		{
			Number:      1,
			Name:        "gsom-acquisition",
			Description: "Acquiring NOAA GSOM climate data via API",
			Kind:        KindNotebook,
			Target:      "Notebooks/01_GSOM_Acquisition.ipynb",
			Outputs: []Artifact{
				{Path: "data/raw/USC00118740_GSOM_*.csv", Description: "NOAA climate data"},
			},
		},
		{
			Number:      3,
			Name:        "nass-alteration",
			Description: "Transforming NASS data (long → wide format)",
			Kind:        KindNotebook,
			Target:      "Notebooks/02_NASS_Alteration.ipynb",
			Inputs:      []string{"data/raw/nass_qs_1902_to_2025.csv"},
			Outputs: []Artifact{
				{Path: "data/processed/illinois_corn_wide.csv", Description: "Transformed NASS data"},
			},
		},
		{
			Number:      4,
			Name:        "gsom-alteration",
			Description: "Selecting relevant GSOM climate variables",
			Kind:        KindNotebook,
			Target:      "Notebooks/03_GSOM_Alteration.ipynb",
			Inputs:      []string{"data/raw/USC00118740_GSOM_*.csv"},
			Outputs: []Artifact{
				{Path: "data/processed/gsom_monthly_selected.csv", Description: "Selected climate variables"},
			},
		},
		{
			Number:      5,
			Name:        "gsom-cleaning",
			Description: "Cleaning and annualizing GSOM data",
			Kind:        KindNotebook,
			Target:      "Notebooks/04_GSOM_Cleaning.ipynb",
			Inputs:      []string{"data/processed/gsom_monthly_selected.csv"},
			Outputs: []Artifact{
				{Path: "data/cleaned/gsom_annual_clean.csv", Description: "Cleaned climate data"},
			},
		},
		{
			Number:      6,
			Name:        "nass-cleaning",
			Description: "Cleaning NASS corn production data",
			Kind:        KindNotebook,
			Target:      "Notebooks/05_NASS_Cleaning.ipynb",
			Inputs:      []string{"data/processed/illinois_corn_wide.csv"},
			Outputs: []Artifact{
				{Path: "data/cleaned/nass_clean.csv", Description: "Cleaned corn data"},
			},
		},
		{
			Number:      7,
			Name:        "integration-analysis",
			Description: "Integrating datasets and performing analysis",
			Kind:        KindNotebook,
			Target:      "Notebooks/06_Integration_Analysis.ipynb",
			Inputs: []string{
				"data/cleaned/gsom_annual_clean.csv",
				"data/cleaned/nass_clean.csv",
			},
			Outputs: []Artifact{
				{Path: "data/cleaned/integrated_climate_corn.csv", Description: "Final integrated dataset"},
			},
		},
	}
}
