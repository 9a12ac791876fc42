package config

import (
	"os"
	"reflect"
	"strings"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/arthur-debert/wfpack/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of configuration environment variables
const EnvPrefix = "WFPACK_"

// LoadOptions selects the configuration sources
type LoadOptions struct {
	// UserConfig is loaded when it exists. Defaults to paths.UserConfigPath().
	UserConfig string

	// ConfigFile is an explicit file that must exist (--config)
	ConfigFile string

	// Overrides are applied last, keyed by dotted path ("output.format")
	Overrides map[string]interface{}

	// SkipUser disables the user config layer
	SkipUser bool

	// SkipEnv disables the environment layer
	SkipEnv bool
}

// Load builds the configuration from all layers and validates it
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config if it exists
	userConfig := opts.UserConfig
	if userConfig == "" {
		userConfig = paths.UserConfigPath()
	}
	if _, err := os.Stat(userConfig); err == nil && !opts.SkipUser {
		if err := k.Load(file.Provider(userConfig), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load user config from %s", userConfig)
		}
	}

	// 3. Explicit config file
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", opts.ConfigFile)
		}
		if err := k.Load(file.Provider(opts.ConfigFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", opts.ConfigFile)
		}
	}

	// 4. Env vars
	if !opts.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 5. Command-line overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 6. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				listToBoolMapHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the embedded defaults without user, file or env layers
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipUser: true, SkipEnv: true})
	if err != nil {
		// The embedded defaults are covered by tests; failing here is a build defect
		panic(err)
	}
	return cfg
}

// envKey maps WFPACK_OUTPUT__FORMAT to output.format
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// listToBoolMapHookFunc lets a set be written as a list (or comma-separated
// string) and decoded into map[string]bool
func listToBoolMapHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.Map || t.Elem().Kind() != reflect.Bool {
			return data, nil
		}

		set := make(map[string]bool)
		switch v := data.(type) {
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					set[s] = true
				}
			}
			return set, nil
		case []string:
			for _, s := range v {
				set[s] = true
			}
			return set, nil
		case string:
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					set[s] = true
				}
			}
			return set, nil
		}
		return data, nil
	}
}
