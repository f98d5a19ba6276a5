// Package cfgloader loads and validates YAML configuration at application start.
package cfgloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	// CodeInvalidConfig is returned when the config cannot be read, parsed or validated.
	CodeInvalidConfig = "INVALID_CONFIG"

	envVar      = "ENVIRONMENT"
	defaultFile = "config.yaml"
)

// Load reads the YAML config into T.
//
// Steps: load .env (if present), read the file, expand ${VAR} references from
// the environment, unmarshal, apply `default` struct tags (creasty/defaults)
// and validate `validate` struct tags (go-playground/validator).
//
// The path comes from WithPath, otherwise ./config/${ENVIRONMENT}.yaml when
// ENVIRONMENT is set, otherwise ./config.yaml.
func Load[T any](opts ...Option) (T, error) {
	var config T

	if reflect.ValueOf(config).Kind() == reflect.Ptr {
		return config, errx.New("[cfgloader]: config type must not be a pointer", errx.WithCode(CodeInvalidConfig))
	}

	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}

	_ = godotenv.Load()

	path := o.Path
	if path == "" {
		path = defaultPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, errx.New(
			"[cfgloader]: config file not found",
			errx.WithCode(CodeInvalidConfig),
			errx.WithDetails(errx.D{"path": path}),
		)
	}
	if err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err = defaults.Set(&config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err = Validate(&config); err != nil {
		return config, err
	}

	if !o.Silent {
		printConfig(config)
	}

	return config, nil
}

// MustLoad is Load that exits the process on error.
func MustLoad[T any](opts ...Option) T {
	config, err := Load[T](opts...)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	return config
}

// Validate checks the `validate` struct tags of config.
func Validate(config any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	failedFields := lo.Map(errs, func(fe validator.FieldError, _ int) string {
		tagErr := fe.Tag()
		if fe.Param() != "" {
			tagErr += "=" + fe.Param()
		}
		return fmt.Sprintf("%s: %s", fe.Namespace(), tagErr)
	})

	return errx.New(
		"[cfgloader]: invalid config fields -> "+strings.Join(failedFields, ", "),
		errx.WithCode(CodeInvalidConfig),
	)
}

func defaultPath() string {
	if env := os.Getenv(envVar); env != "" {
		return fmt.Sprintf("./config/%s.yaml", env)
	}
	return defaultFile
}
