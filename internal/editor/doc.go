// Package editor ties the document model, table commands and undo
// history into a single editing session.
//
// A Session owns the current EditorState and a History. Commands are
// looked up by name in a Registry so that scripts and the command line
// can refer to them as strings:
//
//	sess := editor.NewSession(doc, editor.WithHistory(history.NewHistory(100)))
//	sess.SetCursor(4)
//	if _, err := sess.Exec("add_column_after"); err != nil {
//	    return err
//	}
//	out, err := editor.EncodeJSON(sess.Doc(), true)
//
// Documents are exchanged as JSON or YAML using the node JSON shape
// {"type", "attrs", "content", "text"}.
package editor
