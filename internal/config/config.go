package config

import (
	_ "embed"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"os"
	"reflect"
	"sigs.k8s.io/yaml"
	"strings"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const ConfigurationName = "config.yaml"

type Configuration struct {
	Prompt     string `json:"prompt" validate:"max=64"`
	Color      bool   `json:"color"`
	LogFile    string `json:"log_file"`
	NullDevice string `json:"null_device" validate:"required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// OpenLog opens the debug log for appending. It returns nil when logging is
// off.
func (c *Configuration) OpenLog(fsys afero.Fs) (afero.File, error) {
	if c.LogFile == "" {
		return nil, nil
	}
	return fsys.OpenFile(c.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Load reads the configuration at path on top of the defaults. An empty path
// yields the defaults. If path is a directory, config.yaml inside it is used.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	out := Default()
	if path == "" {
		return out, nil
	}

	if isDir, err := afero.IsDir(fsys, path); err == nil && isDir {
		path = strings.TrimSuffix(path, "/") + "/" + ConfigurationName
	}

	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return out, nil
}
