package config

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	yaml "gopkg.in/yaml.v3"
)

// Main is the top level configuration.
type Main struct {
	Wiki               Wiki      `yaml:"wiki"`
	ProtectedVariables []string  `yaml:"protectedVariables"`
	ExtraVariables     []string  `yaml:"extraVariables"`
	BlobStore          BlobStore `yaml:"blobStore"`
	Log                Log       `yaml:"log"`
}

// Wiki identifies the wiki the variables are computed for.
type Wiki struct {
	ID       string `yaml:"id"`
	Language string `yaml:"language"`
}

// BlobStore selects where variable dumps are persisted.
type BlobStore struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Log configures logging. AccessLogDir enables the file based protected variables access log.
type Log struct {
	Level        string `yaml:"level"`
	AccessLogDir string `yaml:"accessLogDir"`
}

// Default returns the configuration used for keys missing from the config file.
func Default() Main {
	return Main{
		Wiki:               Wiki{ID: "wiki", Language: "en"},
		ProtectedVariables: []string{"user_unnamed_ip"},
		BlobStore:          BlobStore{Driver: "memory"},
		Log:                Log{Level: "info"},
	}
}

// Load reads the YAML config file. Keys missing from the file keep their default value.
func Load(fs FileSystem, name string) (c Main, err error) {
	c = Default()

	buf, err := fs.ReadFile(name)
	if err != nil {
		err = fmt.Errorf("reading config file %s: %w", name, err)
		return
	}

	if err = yaml.Unmarshal(buf, &c); err != nil {
		err = fmt.Errorf("parsing config file %s: %w", name, err)
		return
	}

	err = c.Validate()
	return
}

// Validate checks values the YAML decoder cannot check by itself.
func (c Main) Validate() error {
	if c.Wiki.ID == "" {
		return fmt.Errorf("wiki.id must not be empty")
	}
	if _, err := c.LanguageTag(); err != nil {
		return err
	}
	switch c.BlobStore.Driver {
	case "memory":
	case "sqlite":
		if c.BlobStore.Path == "" {
			return fmt.Errorf("blobStore.path is required by the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown blobStore.driver %q", c.BlobStore.Driver)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// LanguageTag parses the content language of the wiki.
func (c Main) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Wiki.Language)
	if err != nil {
		return language.Und, fmt.Errorf("invalid wiki.language %q: %w", c.Wiki.Language, err)
	}
	return tag, nil
}
