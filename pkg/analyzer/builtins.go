package analyzer

// builtinNames are the bindings preloaded into the global scope.
var builtinNames = []string{
	"console", "window", "document",
	"Array", "Object", "String", "Number", "Boolean",
	"Date", "RegExp", "Math", "JSON",
	"parseInt", "parseFloat", "isNaN", "isFinite", "eval",
	"setTimeout", "setInterval", "clearTimeout", "clearInterval",
	"undefined", "NaN", "Infinity",
}

// consoleMethods are the console members the analyzer recognizes.
var consoleMethods = map[string]bool{
	"log":   true,
	"warn":  true,
	"error": true,
	"info":  true,
	"debug": true,
}

// installBuiltins preloads the global scope with the builtin bindings.
func installBuiltins(global *Scope) {
	for _, name := range builtinNames {
		global.Define(&Symbol{
			Name:        name,
			Kind:        SymbolBuiltin,
			Initialized: true,
			Builtin:     true,
		})
	}
}
