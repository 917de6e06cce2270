package console

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

// LoggerConsole encaminha a saída do pipeline para um logger zap. O servidor
// web o usa para que avisos sobre arquivos ignorados apareçam no log.
type LoggerConsole struct {
	logger *zap.SugaredLogger
}

// NewLoggerConsole cria um LoggerConsole.
func NewLoggerConsole(logger *zap.SugaredLogger) *LoggerConsole {
	return &LoggerConsole{logger: logger}
}

func (c *LoggerConsole) Print(a ...interface{}) {
	c.logger.Debug(strings.TrimSpace(fmt.Sprint(a...)))
}

func (c *LoggerConsole) Printf(format string, a ...interface{}) {
	c.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (c *LoggerConsole) Println(a ...interface{}) {
	c.logger.Debug(strings.TrimSpace(fmt.Sprintln(a...)))
}

func (c *LoggerConsole) LogInfo(format string, a ...interface{}) {
	c.logger.Infof(format, a...)
}

func (c *LoggerConsole) LogWarning(format string, a ...interface{}) {
	c.logger.Warnf(format, a...)
}

func (c *LoggerConsole) LogError(format string, a ...interface{}) {
	c.logger.Errorf(format, a...)
}

func (c *LoggerConsole) LogSuccess(format string, a ...interface{}) {
	c.logger.Infof(format, a...)
}

func (c *LoggerConsole) Status(message string) types.StatusHandle {
	c.logger.Debug(message)
	return &statusHandle{}
}

func (c *LoggerConsole) ProgressWithTotal(total int) types.ProgressHandle {
	return &progressHandle{}
}

func (c *LoggerConsole) CreateTable() types.TableInterface {
	return &Table{}
}

func (c *LoggerConsole) DisplayVolumeBars(title string, bars []types.VolumeBar) {
	peak := 0
	for _, b := range bars {
		if b.Peak {
			peak += b.Volume
		}
	}
	c.logger.Debugw("volume chart", "title", title, "intervals", len(bars), "peak_volume", peak)
}
