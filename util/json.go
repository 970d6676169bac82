// util/json.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// DuplicateJSONKey records a key that appears more than once in a single
// JSON object.
type DuplicateJSONKey struct {
	Path string // dotted path to the enclosing object, e.g. "paths.ILS13"
	Key  string
}

func (d DuplicateJSONKey) String() string {
	if d.Path == "" {
		return d.Key
	}
	return d.Path + "." + d.Key
}

// FindDuplicateJSONKeys walks the JSON token stream and returns all keys
// that are repeated within an object. encoding/json silently keeps the
// last value for a repeated key, which hides editing mistakes in
// hand-written scenario files.
func FindDuplicateJSONKeys(data []byte) []DuplicateJSONKey {
	dec := json.NewDecoder(bytes.NewReader(data))
	var duplicates []DuplicateJSONKey

	type level struct {
		isObject  bool
		seen      map[string]bool
		expectKey bool
		popPath   bool // the container is the value of a key in its parent
	}
	var stack []level
	var path []string

	// valueDone is called after a complete value has been consumed.
	valueDone := func() {
		if len(stack) > 0 && stack[len(stack)-1].isObject {
			stack[len(stack)-1].expectKey = true
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				popPath := len(stack) > 0 && stack[len(stack)-1].isObject && !stack[len(stack)-1].expectKey
				l := level{isObject: v == '{', expectKey: v == '{', popPath: popPath}
				if l.isObject {
					l.seen = make(map[string]bool)
				}
				stack = append(stack, l)

			case '}', ']':
				if len(stack) == 0 {
					break
				}
				popPath := stack[len(stack)-1].popPath
				stack = stack[:len(stack)-1]
				if popPath {
					valueDone()
				}
			}

		case string:
			if len(stack) == 0 {
				break
			}
			if top := &stack[len(stack)-1]; top.isObject && top.expectKey {
				if top.seen[v] {
					duplicates = append(duplicates, DuplicateJSONKey{Path: strings.Join(path, "."), Key: v})
				}
				top.seen[v] = true
				top.expectKey = false
				path = append(path, v)
			} else {
				valueDone()
			}

		default:
			valueDone()
		}
	}

	return duplicates
}

// UnmarshalJSONBytes unmarshals the bytes into the given type, reporting
// the line and character of syntax and type errors.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	switch jerr := err.(type) {
	case *json.SyntaxError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %w", line, char, jerr)

	case *json.UnmarshalTypeError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s",
			line, char, jerr.Value, jerr.Struct, jerr.Field, jerr.Type.String())

	default:
		return err
	}
}

// CheckJSON checks that the JSON is syntactically valid and that every
// object key it contains corresponds to a field of T, so that misspelled
// keys are reported rather than silently ignored.
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	var items interface{}
	if err := UnmarshalJSONBytes(contents, &items); err != nil {
		e.Error(err)
		return
	}

	ty := reflect.TypeOf((*T)(nil)).Elem()
	typeCheckJSON(items, ty, make(map[reflect.Type]map[string]reflect.Type), e)
}

func typeCheckJSON(json interface{}, ty reflect.Type, structTypeCache map[reflect.Type]map[string]reflect.Type,
	e *ErrorLogger) {
	for ty.Kind() == reflect.Ptr {
		ty = ty.Elem()
	}

	switch ty.Kind() {
	case reflect.Array, reflect.Slice:
		if array, ok := json.([]interface{}); ok {
			for i, item := range array {
				e.Push(fmt.Sprintf("[%d]", i))
				typeCheckJSON(item, ty.Elem(), structTypeCache, e)
				e.Pop()
			}
		} else {
			e.ErrorString("expected array, got %s", reflect.TypeOf(json))
		}

	case reflect.Map:
		if m, ok := json.(map[string]interface{}); ok {
			for k, v := range m {
				e.Push(k)
				typeCheckJSON(v, ty.Elem(), structTypeCache, e)
				e.Pop()
			}
		} else {
			e.ErrorString("expected object, got %s", reflect.TypeOf(json))
		}

	case reflect.Struct:
		items, ok := json.(map[string]interface{})
		if !ok {
			e.ErrorString("expected object, got %s", reflect.TypeOf(json))
			return
		}

		// Map from JSON name to field type for each struct type
		// encountered.
		types, ok := structTypeCache[ty]
		if !ok {
			types = make(map[string]reflect.Type)
			for _, field := range reflect.VisibleFields(ty) {
				if jtag, ok := field.Tag.Lookup("json"); ok {
					name, _, _ := strings.Cut(jtag, ",")
					types[name] = field.Type
				}
			}
			structTypeCache[ty] = types
		}

		for item, values := range items {
			if fty, ok := types[item]; ok {
				e.Push(item)
				typeCheckJSON(values, fty, structTypeCache, e)
				e.Pop()
			} else {
				e.ErrorString("The entry %q is not an expected JSON object. Is it misspelled?", item)
			}
		}
	}
}
