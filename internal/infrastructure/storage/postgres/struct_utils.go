package postgres

import (
	"reflect"
	"sync"
)

// dbField is one db-tagged (or embedded) struct field. Embedded structs are
// flattened recursively, matching how scany maps columns.
type dbField struct {
	index    int
	column   string
	embedded bool
}

// fieldCache memoizes the db-tag layout per struct type. Reflection runs
// once per type; every later call is a map lookup.
var fieldCache sync.Map // map[reflect.Type][]dbField

func dbFields(t reflect.Type) []dbField {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]dbField)
	}

	var fields []dbField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			fields = append(fields, dbField{index: i, embedded: true})
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		fields = append(fields, dbField{index: i, column: tag})
	}

	fieldCache.Store(t, fields)
	return fields
}

// ExtractDBColumns lists the column names declared by T's "db" tags,
// including those of embedded structs (entity.Catalog and friends).
// Call it once at repository construction time.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOfType(reflect.TypeOf(zero))
}

func columnsOfType(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for _, f := range dbFields(t) {
		if f.embedded {
			cols = append(cols, columnsOfType(t.Field(f.index).Type)...)
			continue
		}
		cols = append(cols, f.column)
	}
	return cols
}

// StructToMap converts a struct to a column-to-value map using "db" tags.
// Fields without a tag, or tagged "-", are skipped. Embedded struct fields
// are merged into the same map.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	fields := dbFields(rv.Type())
	res := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.embedded {
			for k, val := range StructToMap(rv.Field(f.index).Interface()) {
				res[k] = val
			}
			continue
		}
		res[f.column] = rv.Field(f.index).Interface()
	}
	return res
}
