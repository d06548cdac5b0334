package cli

import (
	"flag"
	"strings"
)

const (
	defaultHelpDesc    = "Show help"
	defaultVersionDesc = "Print version and exit"
	defaultSetDesc     = "Override a setting (key=value, repeatable)"
)

type HelpVersionFlags struct {
	Help    bool
	Version bool
}

func AddHelpVersionFlags(fs *flag.FlagSet, helpDesc, versionDesc string) *HelpVersionFlags {
	if fs == nil {
		return &HelpVersionFlags{}
	}
	if helpDesc == "" {
		helpDesc = defaultHelpDesc
	}
	if versionDesc == "" {
		versionDesc = defaultVersionDesc
	}
	flags := &HelpVersionFlags{}
	fs.BoolVar(&flags.Help, "help", false, helpDesc)
	fs.BoolVar(&flags.Help, "h", false, helpDesc)
	fs.BoolVar(&flags.Version, "version", false, versionDesc)
	fs.BoolVar(&flags.Version, "v", false, versionDesc)
	return flags
}

// OverrideList collects repeated key=value flags in order.
type OverrideList []string

func (o *OverrideList) String() string {
	if o == nil {
		return ""
	}
	return strings.Join(*o, ",")
}

func (o *OverrideList) Set(value string) error {
	*o = append(*o, value)
	return nil
}

// AddSetFlag registers a repeatable --set flag.
func AddSetFlag(fs *flag.FlagSet, desc string) *OverrideList {
	overrides := &OverrideList{}
	if fs == nil {
		return overrides
	}
	if desc == "" {
		desc = defaultSetDesc
	}
	fs.Var(overrides, "set", desc)
	return overrides
}
