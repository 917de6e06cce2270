package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

const (
	chooseThisFolder = "[ use this folder ]"
	parentFolder     = "[ .. ]"
)

// pickFolders pergunta a pasta de entrada e, opcionalmente, uma pasta de saída.
func pickFolders() (*types.SummaryOptions, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	pterm.Info.Println("Choose the folder holding the raw count files")
	inputDir, err := browseFolder(cwd)
	if err != nil {
		return nil, err
	}

	sameFolder, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(true).
		Show("Write the summary into the same folder?")
	if err != nil {
		return nil, err
	}

	opts := &types.SummaryOptions{InputDir: inputDir}
	if !sameFolder {
		pterm.Info.Println("Choose the output folder")
		if opts.OutputDir, err = browseFolder(inputDir); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// browseFolder navega pelas subpastas a partir de start até o usuário escolher uma.
func browseFolder(start string) (string, error) {
	dir := start
	for {
		options, err := folderOptions(dir)
		if err != nil {
			return "", err
		}

		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions(options).
			WithMaxHeight(15).
			Show(dir)
		if err != nil {
			return "", err
		}

		switch choice {
		case chooseThisFolder:
			return dir, nil
		case parentFolder:
			dir = filepath.Dir(dir)
		default:
			dir = filepath.Join(dir, choice)
		}
	}
}

// folderOptions lists the choices shown for dir: pick it, go up, or enter a
// subfolder. Hidden folders are left out.
func folderOptions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading folder %s: %w", dir, err)
	}

	options := []string{chooseThisFolder}
	if parent := filepath.Dir(dir); parent != dir {
		options = append(options, parentFolder)
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			subdirs = append(subdirs, e.Name())
		}
	}
	sort.Strings(subdirs)
	return append(options, subdirs...), nil
}

// openerCommand returns the OS command that opens path in its default application.
func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	}
	return "xdg-open", []string{path}
}

func openFile(path string) error {
	name, args := openerCommand(runtime.GOOS, path)
	if err := exec.Command(name, args...).Start(); err != nil {
		pterm.Warning.Printfln("Could not open %s: %v", path, err)
	}
	return nil
}
