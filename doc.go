// Package seam is a typed RPC-over-HTTP dispatch core. Routes are exact
// string keys bound to handlers whose parameters are Go types, and every
// route can describe the shape of its request and response types as a
// language-agnostic schema suitable for generating a typed client.
//
// Handlers are plain functions wrapped with one of Func0 … Func4:
//
//	func divide(ctx context.Context, in seam.JSON[DivisionInput]) (*DivisionOutput, error)
//
//	api := seam.New()
//	api.Add("maths.divide").
//	    Description("Divide two numbers by each other").
//	    Handler(seam.Func1(divide))
//
// Each handler parameter is either a guard (a type whose pointer implements
// Param) or the body (a type whose pointer implements Body). Guards are
// resolved in declaration order and the first failure short-circuits the
// request; the body, if any, must be the last parameter and is only read once
// every guard has succeeded.
//
// Shared state is injected with Provide and asked for with State:
//
//	api := seam.New(seam.Provide(db))
//	api.Add("notes.list").Handler(seam.Func1(func(ctx context.Context, db seam.State[*sql.DB]) ([]Note, error) {
//	    ...
//	}))
//
// Failures are Error values carrying a status code, an internal message for
// logs and an external message for clients. Handlers may return any error;
// it is translated with Translate.
//
// The route table is described with Info, WriteInfo and WriteInfoYAML:
//
//	api.ServeInfo("/_info")
package seam
