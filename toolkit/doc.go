// Package toolkit resolves, validates and runs the actions a model requests.
//
// # Overview
//
// A [Toolkit] holds every registered [reagent.Tool] and a subset of them that
// is equipped. Only equipped tools are shown to the model and only equipped
// tools can be invoked:
//
//	tk := toolkit.New()
//	tk.Register(weatherTool, toolkit.Cacheable())
//	tk.Register(shellTool, toolkit.InGroup("ops"))
//	tk.Equip("get_weather")
//	tk.ActivateGroup("ops")
//
// # Invocation
//
// [Toolkit.Invoke] turns one [reagent.ActionRequest] into a sequence of
// [reagent.ToolChunk]. The flow is:
//
//	resolve -> map args by position -> validate schema -> call -> normalize
//
// Nothing in that flow raises. Unknown actions, missing arguments, schema
// mismatches, tool errors and tool panics all become a single final chunk
// whose text starts with "Error:" and whose metadata carries success=false.
//
// # Folding
//
// Each chunk carries only the text produced since the previous chunk. [Fold]
// drains a sequence and concatenates the text into one
// [reagent.ActionResult].
package toolkit
