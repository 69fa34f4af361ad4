package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// Options configura o logger estruturado.
type Options struct {
	Level   string
	Format  string // "json" (padrão) ou "console"
	Service string
	Output  io.Writer
}

// ZeroLogger é a implementação concreta de Logger sobre o zerolog.
type ZeroLogger struct {
	base zerolog.Logger
}

// NewLogger cria um logger JSON no stdout com o nível informado.
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return New(Options{Level: level})
}

// New cria um logger a partir de Options.
func New(opts Options) Logger {
	var output io.Writer = opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	ctx := zerolog.New(output).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}

	return &ZeroLogger{base: ctx.Logger().Level(ParseLevel(opts.Level))}
}

// NewNop devolve um logger que descarta tudo (usado em testes).
func NewNop() Logger {
	return &ZeroLogger{base: zerolog.Nop()}
}

// ParseLevel converte o texto de configuração em nível do zerolog; padrão info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || value == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	return event
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	withFields(l.base.Debug(), fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	withFields(l.base.Info(), fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	withFields(l.base.Warn(), fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error) {
	l.base.Error().Err(err).Msg(msg)
}

// Fatal registra e encerra o processo.
func (l *ZeroLogger) Fatal(msg string, err error) {
	l.base.Fatal().Err(err).Msg(msg)
}
