// Package script runs Lua observers against the event categories of a
// mux.Hub.
//
// Each script gets its own sandboxed Lua state with the base, table, string
// and math libraries. dofile, loadfile, load and loadstring are removed.
// Scripts see this API:
//
//	events.on(name, fn)  -- subscribe fn to a category
//	events.names()       -- list of category names
//	log(...)             -- write an info line to the application log
//	print(...)           -- same as log
//	SCRIPT_ID            -- the script's unique id
//
// Category names are keydown, keyup, click, mousemove, wheel, copy, cut,
// paste, resize, render and update. fn receives one table describing the
// event. A copy or cut callback that returns a string puts that string on
// the clipboard.
//
// Script subscriptions are liveness probes: closing a script kills every
// subscription it made and handlers drop them on their next fire. Each
// callback runs under the script's timeout; a script that fails too many
// times in a row is closed.
package script
