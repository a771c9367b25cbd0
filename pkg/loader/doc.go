// Package loader loads the bundled derivation graph and publishes the outcome.
//
// # Overview
//
// A [Loader] owns a fixed payload, by default the derivation graph embedded
// into the binary at build time. [Loader.Load] validates it once and returns
// a [State] holding two write-once slots:
//
//   - Data: the validated [derivation.Graph], set only on success
//   - Error: a human-readable message, set only on failure
//
// Exactly one of the two is populated after a load. There is no retry: the
// payload is static, so a failed validation would fail again.
//
// # Usage
//
//	st := loader.New().Load()
//	if g, ok := st.Graph(); ok {
//	    fmt.Println(g.NodeCount(), "nodes")
//	} else if msg, ok := st.Err(); ok {
//	    fmt.Println("error:", msg)
//	}
//
// Consumers that render asynchronously subscribe to a slot instead:
//
//	st.Data.Subscribe(func(g *derivation.Graph) { view.Show(g) })
//	st.Error.Subscribe(func(msg string) { view.ShowError(msg) })
//
// # Error Messages
//
// Validation failures surface as the error's user message (see
// [errors.UserMessage]). A failure value that is not an error, such as a
// non-error panic value, is reported as "Unknown error".
//
// [errors.UserMessage]: github.com/matzehuels/derivgraph/pkg/errors.UserMessage
package loader
