package game

// Command is a control request from a presentation collaborator.
type Command uint8

const (
	CmdPause Command = iota + 1
	CmdResume
	CmdTogglePause
	CmdStep
)

func (c Command) String() string {
	switch c {
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdTogglePause:
		return "toggle_pause"
	case CmdStep:
		return "step"
	default:
		return "unknown"
	}
}

// Send queues a command for the next tick boundary. It never blocks; a
// full queue drops the command and reports false. Safe for concurrent use.
func (g *Game) Send(cmd Command) bool {
	select {
	case g.controls <- cmd:
		return true
	default:
		return false
	}
}

// drainControls applies queued commands. Only called between ticks.
func (g *Game) drainControls() {
	for {
		select {
		case cmd := <-g.controls:
			switch cmd {
			case CmdPause:
				g.paused = true
			case CmdResume:
				g.paused = false
			case CmdTogglePause:
				g.paused = !g.paused
			case CmdStep:
				g.pendingSteps++
			}
		default:
			return
		}
	}
}
