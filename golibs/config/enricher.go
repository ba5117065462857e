// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/solarisdb/promissory/golibs/errors"
	"github.com/solarisdb/promissory/golibs/logging"
)

type (
	// Enricher keeps a configuration structure of the type T and allows to build
	// its value step by step: defaults, then a file, then environment variables.
	//
	// The following contract is applied to the type T:
	// - only the exported fields are updated
	// - a field may be addressed by its name, or by the name from its json:"..." tag
	// - the names are case-insensitive
	Enricher[T any] interface {
		// LoadFromFile loads the structure fields from the YAML or JSON file. The
		// format is defined by the file extension (.json, .yaml or .yml). Empty
		// fileName is ignored.
		LoadFromFile(fileName string) error

		// ApplyOther applies the non-zero fields of the other enricher value to the
		// current one. Structures are merged field by field.
		ApplyOther(other Enricher[T]) error

		// ApplyEnvVariables applies the environment variables which names start with
		// prefix+sep. The rest of the name is the path to the field, separated by sep:
		// for prefix "APP" and sep "_" the variable APP_DISPATCH_POOLMAXWORKERS=10
		// sets the field Dispatch.PoolMaxWorkers. The values are JSON values, but
		// strings may be provided without quotes.
		ApplyEnvVariables(prefix, sep string) error

		// ApplyKeyValues applies the key-value pairs by the same rules as ApplyEnvVariables
		ApplyKeyValues(prefix, sep string, keyValues map[string]string)

		// Value returns the enricher current value
		Value() T
	}

	enricher[T any] struct {
		log logging.Logger
		val T
	}
)

// NewEnricher constructs new Enricher for the type T, which must be a struct
func NewEnricher[T any](val T) Enricher[T] {
	tp := reflect.TypeOf(val)
	if tp == nil || tp.Kind() != reflect.Struct {
		panic(fmt.Sprintf("only structs are acceptable in the Enricher, but got %v", tp))
	}
	return newEnricher(val)
}

func newEnricher[T any](val T) *enricher[T] {
	return &enricher[T]{val: val, log: logging.NewLogger("config.enricher." + reflect.TypeOf(val).Name())}
}

func (e *enricher[T]) LoadFromFile(fileName string) error {
	if fileName == "" {
		e.log.Infof("no config file name is provided, nothing to load")
		return nil
	}
	buf, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("could not read file %s: %w", fileName, err)
	}
	var val T
	switch ext := strings.ToLower(strings.TrimSpace(fileName)); {
	case strings.HasSuffix(ext, ".json"):
		err = json.Unmarshal(buf, &val)
	case strings.HasSuffix(ext, ".yaml"), strings.HasSuffix(ext, ".yml"):
		err = yaml.Unmarshal(buf, &val)
	default:
		return fmt.Errorf("cannot recognize file format %s, expecting .json or .yaml: %w", fileName, errors.ErrInvalid)
	}
	if err != nil {
		return fmt.Errorf("could not unmarshal file %s: %w", fileName, err)
	}
	e.log.Infof("loaded config from %s", fileName)
	return e.ApplyOther(&enricher[T]{val: val})
}

func (e *enricher[T]) ApplyOther(other Enricher[T]) error {
	if other == nil {
		return fmt.Errorf("the other enricher must not be nil: %w", errors.ErrInvalid)
	}
	otherVal := other.Value()
	merge(reflect.ValueOf(&otherVal).Elem(), reflect.ValueOf(&e.val).Elem())
	return nil
}

func (e *enricher[T]) ApplyEnvVariables(prefix, sep string) error {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	e.ApplyKeyValues(prefix, sep, env)
	return nil
}

func (e *enricher[T]) ApplyKeyValues(prefix, sep string, keyValues map[string]string) {
	pfx := ""
	if prefix != "" {
		pfx = strings.ToUpper(prefix + sep)
	}
	for key, value := range keyValues {
		uKey := strings.ToUpper(key)
		if !strings.HasPrefix(uKey, pfx) {
			continue
		}
		path := strings.Split(uKey[len(pfx):], strings.ToUpper(sep))
		ok := e.assign(reflect.ValueOf(&e.val).Elem(), path, value)
		e.log.Debugf("applying %s=%q: %t", key, value, ok)
	}
}

func (e *enricher[T]) Value() T {
	return e.val
}

// assign finds the field by the path in the struct v and sets its value from raw.
// The pointers to structs met on the path are allocated, but only if the
// field is found at the end.
func (e *enricher[T]) assign(v reflect.Value, path []string, raw string) bool {
	if len(path) == 0 || path[0] == "" {
		return false
	}
	tp := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := tp.Field(i)
		if !sf.IsExported() || !fieldMatches(sf, path[0]) {
			continue
		}
		f := v.Field(i)
		if len(path) == 1 {
			if err := setFromString(f, raw); err != nil {
				e.log.Warnf("could not set %s to %q: %v", sf.Name, raw, err)
				return false
			}
			return true
		}

		target, fresh := f, reflect.Value{}
		if f.Kind() == reflect.Ptr {
			if f.Type().Elem().Kind() != reflect.Struct {
				return false
			}
			if f.IsNil() {
				fresh = reflect.New(f.Type().Elem())
				target = fresh.Elem()
			} else {
				target = f.Elem()
			}
		}
		if target.Kind() != reflect.Struct || !e.assign(target, path[1:], raw) {
			return false
		}
		if fresh.IsValid() {
			f.Set(fresh)
		}
		return true
	}
	return false
}

func fieldMatches(sf reflect.StructField, name string) bool {
	if strings.EqualFold(sf.Name, name) {
		return true
	}
	alias, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return alias != "" && alias != "-" && strings.EqualFold(alias, name)
}

// setFromString sets the field value from the JSON value s. If s is not a valid
// JSON for the field type, it is tried as a JSON string.
func setFromString(f reflect.Value, s string) error {
	if len(s) == 0 {
		return nil
	}
	obj := reflect.New(f.Type())
	if err := json.Unmarshal([]byte(s), obj.Interface()); err != nil {
		if err2 := json.Unmarshal([]byte(strconv.Quote(s)), obj.Interface()); err2 != nil {
			return err
		}
	}
	f.Set(obj.Elem())
	return nil
}

// merge copies non-zero values of src to dst, the structs are merged field by field
func merge(src, dst reflect.Value) {
	if src.IsZero() {
		return
	}
	switch src.Kind() {
	case reflect.Ptr:
		if src.Elem().Kind() != reflect.Struct {
			dst.Set(src)
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		merge(src.Elem(), dst.Elem())
	case reflect.Struct:
		for i := 0; i < src.NumField(); i++ {
			if src.Type().Field(i).IsExported() {
				merge(src.Field(i), dst.Field(i))
			}
		}
	default:
		dst.Set(src)
	}
}
