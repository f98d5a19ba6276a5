package cfgloader

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const maskedValue = "******"

//nolint:gochecknoglobals // type constant
var durationType = reflect.TypeFor[time.Duration]()

// printConfig logs config as YAML with `mask:"true"` fields hidden.
// It runs before the application logger exists, hence slog.
func printConfig(config any) {
	out, err := yaml.Marshal(maskedView(reflect.ValueOf(config)))
	if err != nil {
		slog.Error("[cfgloader]: failed to marshal config", "error", err.Error())
		return
	}
	slog.Info("[cfgloader]: loaded config:\n" + string(out))
}

// maskedView converts v into plain maps, slices and scalars keyed by yaml
// names, replacing masked fields. Durations are rendered as strings.
func maskedView(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() { //nolint:exhaustive // scalars fall through to default
	case reflect.Struct:
		out := make(map[string]any, v.NumField())
		for i := range v.NumField() {
			field := v.Type().Field(i)
			if !field.IsExported() {
				continue
			}

			name := yamlName(field)
			if name == "-" {
				continue
			}

			if field.Tag.Get("mask") == "true" {
				out[name] = maskField(v.Field(i))
				continue
			}
			out[name] = maskedView(v.Field(i))
		}
		return out

	case reflect.Map:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = maskedView(iter.Value())
		}
		return out

	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range v.Len() {
			out[i] = maskedView(v.Index(i))
		}
		return out

	default:
		return v.Interface()
	}
}

// maskField hides a field value. Empty values stay empty so a missing
// secret is still visible in the output.
func maskField(v reflect.Value) any {
	if v.IsZero() {
		return nil
	}
	return maskedValue
}

func yamlName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
	if name == "" {
		return strings.ToLower(field.Name)
	}
	return name
}
