// Package kwargs binds named arguments to Go callables whose parameter lists
// were written for ordinary positional calls. The package provides:
//   - Parameter descriptors (Param, Signature) extracted from a function value
//     plus its declared names via Describe, or from struct fields via
//     DescribeStruct.
//   - Named-argument wrappers built with Arg (owned copy) or Ref (borrowed
//     variable), optionally grouped into a Set or parsed from a capture list
//     with Capture.
//   - A binder that validates a call site against a Signature and produces a
//     Binding ordered by parameter index, independent of the order in which
//     names were supplied.
//   - Emission through Func.Call, Invoke, and Construct, which invoke the target
//     exactly once with the bound slots in declaration order.
//   - Deterministic diagnostics: every failure is a *BindError tagged with an
//     ErrorKind and matchable with errors.Is against the Err* sentinels.
//
// Declarations are usually produced by `kwargs gen`, which reads parameter
// names and `//kwargs:default` directives from source and registers each
// function with the Default registry. Hand-written declarations use the same
// API:
//
//	var volume = kwargs.MustDescribe("volume", Volume,
//		kwargs.Required("width"),
//		kwargs.Required("height"),
//		kwargs.Optional("depth", 1),
//	)
//
//	v, err := kwargs.Invoke[int](volume, kwargs.Arg("height", 4), kwargs.Arg("width", 2))
//
// Named format strings ({name} placeholders) are available through Format and
// friends unless the package is built with the kwargs_nofmt tag.
package kwargs
