package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/alexanderjulianmartinez/datadict/internal/source/mysql"
)

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// command options, not configuration.
var flagKeys = map[string]string{
	"type":            "source.type",
	"host":            "source.host",
	"port":            "source.port",
	"user":            "source.user",
	"password":        "source.password",
	"schema":          "source.schema",
	"database":        "source.database",
	"dsn":             "source.dsn",
	"connect-timeout": "source.connect_timeout",
	"query-timeout":   "source.query_timeout",
	"dir":             "export.dir",
	"template":        "export.template",
	"table-style":     "export.table_style",
	"lang":            "export.language",
	"log-level":       "log.level",
	"log-file":        "log.file",
	"log-format":      "log.format",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"source.type":            "mysql",
		"source.host":            "localhost",
		"source.user":            "root",
		"source.connect_timeout": "5s",
		"source.query_timeout":   "5s",
		"export.language":        "zh",
		"log.level":              "info",
		"log.format":             "text",
	}
}

// envKey turns DATADICT_SOURCE__CONNECT_TIMEOUT into source.connect_timeout.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// LoadConfig builds the configuration from, lowest to highest precedence:
// defaults, the .env file, the YAML config file, DATADICT_ environment
// variables and explicitly set flags. An empty path looks for datadict.yaml
// in the working directory; a missing default file is not an error.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if fileExists(DefaultEnvFile) {
		vars, err := godotenv.Read(DefaultEnvFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", DefaultEnvFile, err)
		}
		if err := k.Load(confmap.Provider(dotenvValues(vars), "."), nil); err != nil {
			return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
	}

	used := path
	if used == "" && fileExists(DefaultFile) {
		used = DefaultFile
	}
	if used != "" {
		if !fileExists(used) {
			return nil, fmt.Errorf("config file not found: %s", used)
		}
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = used

	cfg.applyTypeDefaults()
	if cfg.Source.Type == "mysql" && cfg.Source.Schema == "" && cfg.Source.DSN != "" {
		cfg.Source.Schema = mysql.SchemaFromDSN(cfg.Source.DSN)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// dotenvValues keeps the DATADICT_ entries of a .env file, keyed like env vars.
func dotenvValues(vars map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(vars))
	for name, v := range vars {
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		out[envKey(name)] = v
	}
	return out
}
