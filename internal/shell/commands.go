package shell

// Command identifies one shell keyword.
type Command int

const (
	CmdHelp Command = iota
	CmdSearch
	CmdInfo
	CmdRemote
	CmdQuit
	CmdUnknown
)

// CommandSpec describes one shell command for help output.
type CommandSpec struct {
	Name    string
	Command Command
	Syntax  string
	Summary string
}

// Usage returns the one-line usage string printed by help.
func (s CommandSpec) Usage() string {
	return s.Syntax + " - " + s.Summary
}

// Commands is the ordered command table.
var Commands = []CommandSpec{
	{Name: "help", Command: CmdHelp, Syntax: "help [command]", Summary: "Get help on a command"},
	{Name: "search", Command: CmdSearch, Syntax: "search <query>", Summary: "Search for a user by full name, email or account name"},
	{Name: "info", Command: CmdInfo, Syntax: "info", Summary: "Show the selected user's details"},
	{Name: "remote", Command: CmdRemote, Syntax: "remote", Summary: "Remote into the selected user's last logon computer"},
	{Name: "quit", Command: CmdQuit, Syntax: "quit", Summary: "Close the directory connection and exit"},
}

// ParseCommand maps a keyword onto its Command. Matching is exact and
// case-sensitive.
func ParseCommand(word string) Command {
	if spec, ok := Lookup(word); ok {
		return spec.Command
	}
	return CmdUnknown
}

// Lookup returns the CommandSpec named name.
func Lookup(name string) (CommandSpec, bool) {
	for _, spec := range Commands {
		if spec.Name == name {
			return spec, true
		}
	}
	return CommandSpec{}, false
}
