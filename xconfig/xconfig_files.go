package xconfig

import (
	"bytes"
	"errors"
	"io"
	"os"
	"reflect"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envMacroRegex = regexp.MustCompile(`\$\{env:([^}]+)\}`)

func loadFromFile(config interface{}, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandMacros replaces ${env:NAME} with the value of NAME. Unset variables
// leave the macro in place.
func expandMacros(value string) string {
	return envMacroRegex.ReplaceAllStringFunc(value, func(match string) string {
		envVar := envMacroRegex.FindStringSubmatch(match)[1]
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
		return match
	})
}

func expandMacrosInValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.String:
		if v.CanSet() && v.String() != "" {
			v.SetString(expandMacros(v.String()))
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if field := v.Field(i); field.CanSet() {
				expandMacrosInValue(field)
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			expandMacrosInValue(v.Index(i))
		}
	case reflect.Map:
		if v.Type().Elem().Kind() != reflect.String {
			return
		}
		for _, key := range v.MapKeys() {
			expanded := reflect.ValueOf(expandMacros(v.MapIndex(key).String())).Convert(v.Type().Elem())
			v.SetMapIndex(key, expanded)
		}
	}
}
