package logging

import (
	"io"
	"os"
	"sync"

	"velrixo-casino/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu   sync.RWMutex
	sink       io.Writer = os.Stdout
	fileWriter *sizeLimitedWriter
)

// Init configures the global zerolog logger. When cfg.File is set, log lines go
// to stdout and to a size-capped file.
func Init(cfg config.LogConfig) error {
	var out io.Writer = os.Stdout
	var fw *sizeLimitedWriter
	if cfg.File != "" {
		w, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			return err
		}
		fw = w
		out = io.MultiWriter(os.Stdout, w)
	}

	writerMu.Lock()
	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = fw
	sink = out
	writerMu.Unlock()

	var console io.Writer = out
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(cfg.ZerologLevel())
	logger := zerolog.New(console).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer returns the raw sink configured by Init, for handlers that format their own lines.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return sink
}

func Close() error {
	writerMu.Lock()
	defer writerMu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	sink = os.Stdout
	return err
}
