package reflector

import (
	"reflect"
)

// TypeKey returns the package-qualified type name of v, useful as a stable
// abstract key when working with interfaces.
//
//	key := reflector.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	c.Singleton(key, factory)
func TypeKey(v any) string {
	return KeyFor(reflect.TypeOf(v))
}

// KeyOf returns the abstract key of T.
//
//	reflector.KeyOf[*http.Request]()       // "net/http.Request"
//	reflector.KeyOf[http.ResponseWriter]() // "net/http.ResponseWriter"
func KeyOf[T any]() string {
	return KeyFor(reflect.TypeOf((*T)(nil)).Elem())
}

// KeyFor returns the abstract key of t. One level of pointer is stripped, so
// *Foo and Foo share a key.
func KeyFor(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// IsBuiltin reports whether t is a scalar or collection type that can never be
// autowired: bool, numbers, strings, slices, arrays, maps, channels, funcs,
// pointers to any of those, and the empty interface.
func IsBuiltin(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return false
	case reflect.Interface:
		return t.NumMethod() == 0
	default:
		return true
	}
}

// IsNullable reports whether t has a nil value.
func IsNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// IsError reports whether t is the error interface or implements it.
func IsError(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.Implements(errorType)
}
