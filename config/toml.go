package config

import (
	"bytes"
	_ "embed"
	"os"
	"strings"
	"text/template"

	cmtconfig "github.com/cometbft/cometbft/config"
	cmtos "github.com/cometbft/cometbft/libs/os"
	"github.com/spf13/viper"
)

var appTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("appConfigTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if appTemplate, err = tmpl.Parse(defaultAppTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFile writes the CometBFT sections followed by the [app] section
// to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) {
	cmtconfig.WriteConfigFile(configFilePath, config.Config)
	base, err := os.ReadFile(configFilePath)
	if err != nil {
		panic(err)
	}

	buffer := bytes.NewBuffer(base)
	if err := appTemplate.Execute(buffer, config); err != nil {
		panic(err)
	}

	cmtos.MustWriteFile(configFilePath, buffer.Bytes(), 0o644)
}

// ReadConfigFile loads home/config/config.toml on top of the defaults.
func ReadConfigFile(home string) (*Config, error) {
	conf := NewConfig(home)
	home = conf.RootDir

	v := viper.New()
	v.SetConfigFile(home + "/config/config.toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(conf); err != nil {
		return nil, err
	}
	conf.SetRoot(home)
	conf.App.Home = home
	if err := conf.ValidateBasic(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go.
//
//go:embed app.toml.tpl
var defaultAppTemplate string
