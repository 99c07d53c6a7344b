package main

import (
	"io"

	"github.com/archlinux/archwiki-sub029/blobstore"
	"github.com/archlinux/archwiki-sub029/config"
	"github.com/archlinux/archwiki-sub029/logging"
	"github.com/archlinux/archwiki-sub029/vardump"
	"github.com/archlinux/archwiki-sub029/variables"

	"github.com/rs/zerolog"
)

type app struct {
	configPath      string
	logLevel        string
	ip              string
	ipHex           string
	viewer          string
	canSeeProtected bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	fs     config.FileSystem

	env *environment
}

type environment struct {
	logger   zerolog.Logger
	keywords *variables.KeywordsManager
	blobs    blobstore.Store
	store    *vardump.VariablesBlobStore
	closers  []io.Closer
}

func newApp(in io.Reader, out io.Writer, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, fs: config.NewFileSystem()}
}

// setup builds the components once. Later commands run by the same app share them.
func (a *app) setup() (err error) {
	if a.env != nil {
		return
	}

	c := config.Default()
	if a.configPath != "" {
		if c, err = config.Load(a.fs, a.configPath); err != nil {
			return
		}
	}
	if a.logLevel != "" {
		c.Log.Level = a.logLevel
	}

	logger, err := logging.NewLogger(c.Log.Level, a.errOut)
	if err != nil {
		return
	}

	lang, err := c.LanguageTag()
	if err != nil {
		return
	}

	var accessLogger logging.ProtectedVarsAccessLogger
	if c.Log.AccessLogDir != "" {
		accessLogger, err = logging.NewFileAccessLogger(&logging.LogFileSystemImpl{}, c.Log.AccessLogDir, logger)
		if err != nil {
			return
		}
	} else {
		accessLogger = logging.NewZerologAccessLogger(logger)
	}

	blobs, err := blobstore.Open(logger, c.BlobStore.Driver, c.BlobStore.Path)
	if err != nil {
		return
	}

	keywords := variables.NewKeywordsManager(c.ExtraVariables...)
	computer := variables.NewLazyVariableComputer(logger, variables.NewHooks(), variables.Services{}, c.Wiki.ID, lang)
	manager := variables.NewVariablesManager(logger, keywords, computer)

	a.env = &environment{
		logger:   logger,
		keywords: keywords,
		blobs:    blobs,
		store:    vardump.NewVariablesBlobStore(logger, manager, blobs, accessLogger, c.ProtectedVariables),
		closers:  []io.Closer{blobs},
	}
	if closer, ok := accessLogger.(io.Closer); ok {
		a.env.closers = append(a.env.closers, closer)
	}
	logger.Debug().Str("wiki", c.Wiki.ID).Str("blobStore", c.BlobStore.Driver).Msg("Initialized")
	return
}

func (a *app) close() error {
	if a.env == nil {
		return nil
	}
	for _, closer := range a.env.closers {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return nil
}

type cliViewer struct {
	name            string
	canSeeProtected bool
}

func (v *cliViewer) Name() string { return v.name }

func (v *cliViewer) CanViewProtectedVariables(names []string) bool { return v.canSeeProtected }
