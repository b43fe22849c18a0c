// Package paths resolves the install layout a post-install run operates on.
//
// A run is invoked with three positional values (data directory, binary
// directory, application id) and an optional staging root taken from the
// DESTDIR environment variable. From those it derives:
//
//   - BinDir: the staging root prepended to the binary directory as a plain
//     string prefix, then cleaned
//   - LinkSource: <datadir>/<launcher>/<appid>
//   - LinkTarget: <bindir>/<launcher>
//   - IconDir, SchemaDir, DesktopDir below the data directory
//
// The data directory is never prefixed with the staging root. In a staged
// install the launcher link therefore points at the final location and dangles
// until the package is unpacked on the target system.
//
// # Usage
//
//	inv := paths.Invocation{
//	    DataDir: "/usr/share",
//	    BinDir:  "/usr/bin",
//	    AppID:   "org.gnome.Maps",
//	    DestDir: paths.StagingRoot(os.Getenv),
//	}
//	layout, err := paths.Resolve(inv, "gnome-maps")
//	// layout.LinkSource == "/usr/share/gnome-maps/org.gnome.Maps"
//	// layout.LinkTarget == "/usr/bin/gnome-maps"
package paths
