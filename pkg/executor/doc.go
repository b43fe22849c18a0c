// Package executor runs the external tools a post-install run calls
// (gtk-update-icon-cache, glib-compile-schemas, desktop-file-validate).
//
// Commands run synchronously, one at a time, bounded by a timeout. Output is
// captured for the report and echoed to the console so build logs show what
// the tools printed. A failing command never panics or aborts the caller: the
// outcome is returned as a Result for the caller to record.
package executor
