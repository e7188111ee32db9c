package model

import "strings"

type CommandKind string

const (
	KindProgramming CommandKind = "programming"
	KindPentest     CommandKind = "pentest"
	KindReverse     CommandKind = "reverse"
	KindForensics   CommandKind = "forensics"
	KindCrypto      CommandKind = "crypto"
	KindSysadmin    CommandKind = "sysadmin"
	KindNetwork     CommandKind = "network"
	KindNone        CommandKind = ""
	KindUnknown     CommandKind = "unknown"
)

// KindSeparator joins several tags inside the single stored type value.
const KindSeparator = "|"

// IsValid returns true if CommandKind is one of the known tags
func (k CommandKind) IsValid() bool {
	switch k {
	case KindProgramming, KindPentest, KindReverse, KindForensics,
		KindCrypto, KindSysadmin, KindNetwork:
		return true
	}
	return false
}

func (k CommandKind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindUnknown:
		return "UNKNOWN"
	}
	return strings.ToUpper(string(k))
}

// ParseKind maps a single tag onto a CommandKind. Tags outside the known set
// become KindUnknown; the empty tag is KindNone.
func ParseKind(s string) CommandKind {
	k := CommandKind(s)
	if k == KindNone || k.IsValid() {
		return k
	}
	return KindUnknown
}

// ParseKinds splits a stored cmd_types value such as "network|pentest".
func ParseKinds(s string) []CommandKind {
	parts := strings.Split(s, KindSeparator)
	kinds := make([]CommandKind, 0, len(parts))
	for _, p := range parts {
		kinds = append(kinds, ParseKind(p))
	}
	return kinds
}

// A Command is one tool entry of the arsenal, keyed by the name it was given
// in the source document.
//
// Types and Args hold at most one row each: the raw cmd_types and args
// strings are kept as a single opaque value per command.
type Command struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	Name      string
	NameExe   string
	ShortDesc string
	Details   string
	Types     []CommandType    `gorm:"foreignKey:CommandID"`
	Args      []CommandArgs    `gorm:"foreignKey:CommandID"`
	Examples  []CommandExample `gorm:"foreignKey:CommandID"`
}

func (Command) TableName() string { return "commands" }

// TypeValue returns the stored cmd_types value, or "" when there is none.
func (c Command) TypeValue() string {
	if len(c.Types) == 0 {
		return ""
	}
	return c.Types[0].Type
}

// ArgsValue returns the stored args value, or "" when there is none.
func (c Command) ArgsValue() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0].Args
}

func (c Command) Kinds() []CommandKind {
	return ParseKinds(c.TypeValue())
}

func (c Command) ExampleLines() []string {
	lines := make([]string, 0, len(c.Examples))
	for _, e := range c.Examples {
		lines = append(lines, e.Example)
	}
	return lines
}

type CommandType struct {
	CommandID uint
	Type      string
}

func (CommandType) TableName() string { return "command_types" }

type CommandArgs struct {
	CommandID uint
	Args      string
}

func (CommandArgs) TableName() string { return "command_args" }

type CommandExample struct {
	CommandID uint
	Example   string
}

func (CommandExample) TableName() string { return "command_examples" }
