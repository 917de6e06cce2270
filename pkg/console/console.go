package console

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
	"github.com/pterm/pterm"
)

// Console é uma implementação do ConsoleInterface.
type Console struct {
	silent bool
}

// NewConsole cria um novo Console.
func NewConsole() *Console {
	return &Console{}
}

// NewSilentConsole cria um Console que descarta toda a saída.
// Usado pelo ponto de entrada da biblioteca e pelos testes.
func NewSilentConsole() *Console {
	return &Console{silent: true}
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	if c.silent {
		return
	}
	fmt.Print(a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	if c.silent {
		return
	}
	fmt.Printf(format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	if c.silent {
		return
	}
	fmt.Println(a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	if c.silent {
		return
	}
	pterm.Info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	if c.silent {
		return
	}
	pterm.Warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	if c.silent {
		return
	}
	pterm.Error.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	if c.silent {
		return
	}
	pterm.Success.Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	if c.silent {
		return &statusHandle{}
	}
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

// Cores predefinidas para uso consistente
var (
	BoldRed     = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

// progressHandle é uma implementação do ProgressHandle.
type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

func (c *Console) ProgressWithTotal(total int) types.ProgressHandle {
	if c.silent || total <= 0 {
		return &progressHandle{}
	}
	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Summarizing count files").
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(false).
		Start()
	return &progressHandle{bar: bar}
}

// Increment incrementa a barra de progresso.
func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

// Stop pára a barra de progresso.
func (h *progressHandle) Stop() {
	if h.bar != nil {
		h.bar.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayVolumeBars desenha o volume de cada intervalo como barras,
// destacando a janela de pico.
func (c *Console) DisplayVolumeBars(title string, bars []types.VolumeBar) {
	if c.silent {
		return
	}

	maxVolume := 0
	for _, b := range bars {
		if b.Volume > maxVolume {
			maxVolume = b.Volume
		}
	}

	if maxVolume == 0 {
		pterm.Warning.Println("All intervals are empty for this location")
		return
	}

	tableData := pterm.TableData{
		{"Interval", "Volume", ""},
	}

	for _, b := range bars {
		barLength := b.Volume * 40 / maxVolume
		bar := strings.Repeat("█", barLength)

		barColor := pterm.FgBlue.Sprint(bar)
		volume := fmt.Sprintf("%d", b.Volume)
		if b.Peak {
			barColor = pterm.FgRed.Sprint(bar)
			volume = pterm.FgRed.Sprint(volume)
		}

		tableData = append(tableData, []string{b.Label, volume, barColor})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	panel := pterm.DefaultBox.WithTitle(title).WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)

	fmt.Println("\n" + panel)
}
