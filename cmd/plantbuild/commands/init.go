package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
)

const lightTheme = `' Light theme, included with !include <theme folder>/light.puml.
skinparam backgroundColor #FFFFFF
skinparam defaultFontColor #1F2328
skinparam ArrowColor #1F2328
`

const darkTheme = `' Dark theme, swapped in for the light theme when rendering _dark variants.
skinparam backgroundColor #0D1117
skinparam defaultFontColor #E6EDF3
skinparam ArrowColor #E6EDF3
`

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration and theme files"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(root.Config, i.Force)
}

// RunInit writes the example configuration and scaffolds the theme files
// below the first diagram root's source folder.
func RunInit(configPath string, force bool) error {
	fmt.Println("Initializing plantbuild project")
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		fmt.Println("Initialization failed")
		return foundationerrors.ConfigError("failed to write configuration").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return foundationerrors.ConfigError("generated configuration does not load").WithCause(err).Build()
	}
	themeDir := filepath.Join(cfg.Roots.DiagramRoot, cfg.Roots.InputFolder, cfg.Theme.Folder)
	files := map[string]string{
		filepath.Join(themeDir, cfg.Theme.Light): lightTheme,
		filepath.Join(themeDir, cfg.Theme.Dark):  darkTheme,
	}
	if err := os.MkdirAll(themeDir, 0o750); err != nil {
		return foundationerrors.FileSystemError("failed to create theme folder").WithCause(err).WithContext("path", themeDir).Build()
	}
	for path, content := range files {
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Printf("Keeping existing %s\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return foundationerrors.FileSystemError("failed to write theme file").WithCause(err).WithContext("path", path).Build()
		}
		fmt.Printf("Wrote %s\n", path)
	}
	fmt.Println("initialized successfully")
	return nil
}
