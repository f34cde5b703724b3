//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/adt/playground"
)

func main() {
	js.Global().Set("CheckScript", js.FuncOf(playground.CheckScript))
	js.Global().Set("RunScript", playground.RunScript)

	// keep the functions available to JavaScript
	<-make(chan struct{})
}
