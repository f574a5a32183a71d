// Package errors provides structured, coded errors and diagnostics for weft.
//
// The reconciler never returns errors to render code; problems it absorbs
// (duplicate cache keys, unserialisable attribute values, cache faults) are
// logged as coded diagnostics so they can be grepped and counted. The same
// type carries the errors the CLI, config loader and snapshot stores do
// return.
//
// # Codes
//
// Codes starting with W are diagnostics the engine recovers from. Codes
// starting with E are returned errors.
//
//	W001  duplicate cache key in one render pass
//	W002  attribute value could not be serialised
//	E040  configuration file is invalid
//
// # Usage
//
//	err := errors.New("E040").
//	    WithLocation("weft.json", 4, 12).
//	    WithSuggestion("render.maxFlattenDepth must be at least 1")
//
//	fmt.Println(err.Format())
//
// A *WeftError implements slog.LogValuer, so it can be passed directly as a
// log attribute.
package errors
