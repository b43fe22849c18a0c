// Package hook implements the post-install procedure.
//
// A run is a fixed, ordered list of steps:
//
//  1. ensure-dir: create the binary directory when missing
//  2. link: point <bindir>/<launcher> at <datadir>/<launcher>/<appid>
//  3. icon-cache: gtk-update-icon-cache -f -t <datadir>/icons/hicolor
//  4. schemas: glib-compile-schemas <datadir>/glib-2.0/schemas
//  5. desktop-validate: desktop-file-validate on each <datadir>/applications/*.desktop
//  6. manifest: record what the run created
//
// Steps 3 to 5 are skipped while a staging root (DESTDIR) is set, because the
// caches belong to the system the package is finally installed on. Step 5 is
// off unless enabled in configuration, as is step 6 unless a manifest path is
// configured.
//
// Every step runs even when an earlier one failed. Failures are collected in
// the Report; Run only returns them as an error in strict mode.
package hook
