// Package buildinfo reports what the running binary was built from.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

type Info struct {
	Version   string
	Revision  string
	Modified  bool
	GoVersion string
	Tags      string
}

var readBuildInfo = debug.ReadBuildInfo

// Read never fails; fields the toolchain did not record stay empty and
// Version falls back to "dev".
func Read() Info {
	out := Info{Version: "dev"}
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return out
	}
	out.GoVersion = info.GoVersion
	if v := info.Main.Version; v != "" && v != "(devel)" {
		out.Version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "-tags":
			out.Tags = s.Value
		case "vcs.revision":
			out.Revision = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}
	return out
}

// String renders e.g. "v1.2.0 (abc1234, dirty, tags: x)".
func (i Info) String() string {
	var extra []string
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		extra = append(extra, rev)
	}
	if i.Modified {
		extra = append(extra, "dirty")
	}
	if i.Tags != "" {
		extra = append(extra, "tags: "+i.Tags)
	}
	if len(extra) == 0 {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(extra, ", "))
}
