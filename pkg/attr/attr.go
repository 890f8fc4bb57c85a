// Copyright 2025 Orgsync Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package attr implements uniform field lookup over heterogeneous record
// shapes. Upstream identity payloads arrive either as loosely typed maps
// or as typed structs, and the same logical field may be spelled under
// several aliases; the accessors here hide both problems from callers.
package attr

import (
	"reflect"
	"strconv"
	"strings"
)

// Get returns the first present, non-nil value found under the
// alias-ordered names, or def when none resolves. Absent keys and
// explicit nulls are treated the same. record may be a map with string
// keys, a struct, or a pointer to either.
func Get(record any, def any, names ...string) any {
	for _, name := range names {
		if v, ok := lookup(record, name); ok {
			return v
		}
	}
	return def
}

// String resolves like Get, unwraps enumeration wrappers, and renders the
// result as a string. Missing values yield "".
func String(record any, names ...string) string {
	v := Unwrap(Get(record, nil, names...))
	return ToString(v)
}

// Int resolves like Get, unwraps enumeration wrappers, and converts the
// result to an int, falling back to def when absent or unconvertible.
func Int(record any, def int, names ...string) int {
	v := Unwrap(Get(record, nil, names...))
	if v == nil {
		return def
	}
	if n, ok := toInt(v); ok {
		return n
	}
	return def
}

// Unwrap extracts the underlying scalar from enumeration-like wrapper
// values (a `value` map entry or a Value struct field). Plain scalars
// pass through unchanged.
func Unwrap(v any) any {
	if v == nil {
		return nil
	}
	switch m := v.(type) {
	case map[string]any:
		if inner, ok := m["value"]; ok {
			return inner
		}
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		f := rv.FieldByName("Value")
		if f.IsValid() && f.CanInterface() {
			return f.Interface()
		}
	}
	return v
}

// ToString renders a scalar as a string. Integral floats (the usual JSON
// number decoding) render without a fractional part.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return ""
			}
			return ToString(rv.Elem().Interface())
		}
		return ""
	}
}

func lookup(record any, name string) (any, bool) {
	if record == nil {
		return nil, false
	}

	// fast path for decoded JSON
	if m, ok := record.(map[string]any); ok {
		v, ok := m[name]
		if !ok || isNil(v) {
			return nil, false
		}
		return v, true
	}

	rv := reflect.ValueOf(record)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name))
		if !mv.IsValid() {
			return nil, false
		}
		v := mv.Interface()
		if isNil(v) {
			return nil, false
		}
		return v, true
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, false
		}
		return lookup(rv.Elem().Interface(), name)
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			if !nameMatches(field.Name, name) {
				continue
			}
			v := rv.Field(i).Interface()
			if isNil(v) {
				return nil, false
			}
			return v, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// nameMatches compares a Go field name against a source field name,
// ignoring case and underscores (SourceUserId matches sourceUserId and
// source_user_id).
func nameMatches(fieldName, name string) bool {
	a := strings.ReplaceAll(fieldName, "_", "")
	b := strings.ReplaceAll(name, "_", "")
	return strings.EqualFold(a, b)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
