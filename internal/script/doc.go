// Package script runs Lua scripts against an editing session.
//
// Scripts execute in a sandboxed gopher-lua state: only the base, table,
// string and math libraries are available, and file loading functions
// are removed. The session is exposed as the global "editor" module:
//
//	editor.cursor(4)
//	editor.add_column_after()
//	editor.next_cell()
//	editor.insert("total")
//	if not editor.remove_column() then
//	    editor.log("nothing to remove")
//	end
//
// Command functions return true when the command applied. Commands
// rejected by the runtime's allow list raise a Lua error.
package script
