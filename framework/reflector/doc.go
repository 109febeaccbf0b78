// Package reflector describes the parameters of Go callables for the container.
//
// Describe turns a func (or a Function carrying metadata) into an ordered list
// of Dependency descriptors: declared type, candidate abstracts, nullability,
// variadic flag, default value and whether the type is a builtin scalar that
// must never be autowired.
//
// Go signatures carry neither parameter names, defaults nor union types, so
// those are supplied alongside the callable:
//
//	reflector.Fn(NewReportController,
//	    reflector.Skip,                                  // *Logger: plain autowiring
//	    reflector.Named("store").OneOf("RedisStore", "FileStore").Nullable(),
//	    reflector.Named("perPage").Default(25),
//	)
//
// Catalog records which abstracts are constructible types, i.e. which names
// the container may build without an explicit binding.
package reflector
