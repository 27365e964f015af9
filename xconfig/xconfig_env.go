package xconfig

import (
	"fmt"
	"os"
	"reflect"
	"strings"
)

func envKeyPrefix(prefix string) string {
	return strings.ToUpper(prefix)
}

func getFieldTagName(fieldType reflect.StructField) string {
	yamlTag := fieldType.Tag.Get("yaml")
	if yamlTag == "-" {
		return ""
	}
	if name := strings.Split(yamlTag, ",")[0]; name != "" {
		return name
	}
	return strings.ToLower(fieldType.Name)
}

// loadFromEnvRecursive sets scalar fields from PREFIX_NAME variables. Lists
// and maps are only configurable through files.
func loadFromEnvRecursive(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		tagName := getFieldTagName(fieldType)
		if tagName == "" {
			continue
		}
		envKey := prefix + "_" + strings.ToUpper(tagName)

		switch {
		case field.Kind() == reflect.Struct:
			if err := loadFromEnvRecursive(field, envKey); err != nil {
				return err
			}
		case field.Kind() == reflect.Slice, field.Kind() == reflect.Map,
			field.Kind() == reflect.Interface, field.Kind() == reflect.Ptr:
			continue
		default:
			envValue := os.Getenv(envKey)
			if envValue == "" {
				continue
			}
			if err := setValueFromString(field, envValue); err != nil {
				return fmt.Errorf("%s: %w", envKey, err)
			}
		}
	}

	return nil
}
