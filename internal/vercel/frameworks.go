package vercel

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Framework is one entry of the preset catalog the dashboard offers when
// creating a project. Free-text framework tags remain allowed; the catalog
// only drives the picker and default commands.
type Framework struct {
	ID              string `yaml:"id" json:"id"`
	Name            string `yaml:"name" json:"name"`
	BuildCommand    string `yaml:"buildCommand" json:"buildCommand"`
	InstallCommand  string `yaml:"installCommand" json:"installCommand"`
	OutputDirectory string `yaml:"outputDirectory" json:"outputDirectory"`
}

//go:embed frameworks.yaml
var frameworksYAML []byte

var frameworkCatalog []Framework

func init() {
	var doc struct {
		Frameworks []Framework `yaml:"frameworks"`
	}
	if err := yaml.Unmarshal(frameworksYAML, &doc); err != nil {
		panic(fmt.Sprintf("vercel: embedded frameworks.yaml is invalid: %v", err))
	}
	frameworkCatalog = doc.Frameworks
}

// Frameworks returns the preset catalog.
func Frameworks() []Framework {
	out := make([]Framework, len(frameworkCatalog))
	copy(out, frameworkCatalog)
	return out
}

// FrameworkByID looks up a preset. ok is false for free-text tags.
func FrameworkByID(id string) (Framework, bool) {
	for _, f := range frameworkCatalog {
		if f.ID == id {
			return f, true
		}
	}
	return Framework{}, false
}

// ApplyFrameworkDefaults fills empty build settings from the framework's
// preset, when the framework is a known preset. Explicit values always win.
func ApplyFrameworkDefaults(req *CreateProjectRequest) {
	preset, ok := FrameworkByID(req.Framework)
	if !ok {
		return
	}
	if req.BuildCommand == "" {
		req.BuildCommand = preset.BuildCommand
	}
	if req.InstallCommand == "" {
		req.InstallCommand = preset.InstallCommand
	}
	if req.OutputDirectory == "" {
		req.OutputDirectory = preset.OutputDirectory
	}
}
