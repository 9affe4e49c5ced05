package bot

import "fmt"

// CommandKind identifies a control command.
type CommandKind int

const (
	CmdToggle CommandKind = iota + 1
	CmdStartStop
	CmdRestart
	CmdQuit
	CmdRescan
)

func (k CommandKind) String() string {
	switch k {
	case CmdToggle:
		return "toggle"
	case CmdStartStop:
		return "start_stop"
	case CmdRestart:
		return "restart"
	case CmdQuit:
		return "quit"
	case CmdRescan:
		return "rescan"
	default:
		return "unknown"
	}
}

// ParseCommandKind is the inverse of CommandKind.String.
func ParseCommandKind(s string) (CommandKind, bool) {
	for k := CmdToggle; k <= CmdRescan; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Command is sent by control surfaces to the orchestrator. Index is the
// entry index for Toggle and Restart.
type Command struct {
	Kind  CommandKind
	Index int
}

func Toggle(index int) Command  { return Command{Kind: CmdToggle, Index: index} }
func Restart(index int) Command { return Command{Kind: CmdRestart, Index: index} }
func StartStop() Command        { return Command{Kind: CmdStartStop} }
func Quit() Command             { return Command{Kind: CmdQuit} }
func Rescan() Command           { return Command{Kind: CmdRescan} }

func (c Command) String() string {
	switch c.Kind {
	case CmdToggle, CmdRestart:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Index)
	default:
		return c.Kind.String()
	}
}
