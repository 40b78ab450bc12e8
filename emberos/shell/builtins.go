package shell

type commandHelp struct {
	Name string
	Desc string
}

var builtinCommandHelp = []commandHelp{
	{Name: "help", Desc: "Show available commands."},
	{Name: "clear", Desc: "Clear the console."},
	{Name: "echo", Desc: "Print arguments."},
	{Name: "ps", Desc: "List processes."},
	{Name: "ticks", Desc: "Show the kernel tick counter."},
	{Name: "uptime", Desc: "Show uptime."},
	{Name: "sleep", Desc: "Block the shell for N milliseconds."},
	{Name: "pri", Desc: "Show or set the shell's priority."},
	{Name: "spawn", Desc: "Start a process (burn|sleeper)."},
	{Name: "log", Desc: "Send a line to the HAL logger."},
	{Name: "version", Desc: "Show build version."},
	{Name: "uname", Desc: "Show system information (try -a)."},
	{Name: "panic", Desc: "Panic the shell process (test)."},
}
