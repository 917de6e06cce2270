package main

import (
	"fmt"
	"os"

	"github.com/diillson/tmc-summarizer-go/internal/adapter/driving/cli"
	"github.com/diillson/tmc-summarizer-go/pkg/summarizer"
	"github.com/diillson/tmc-summarizer-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Os repositórios são montados por comando, cada um com o seu console
	app.SetUseCaseFactory(summarizer.NewUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
