package logfields

const (
	// LogSubsys is the field key for the subsystem an entry originates from.
	LogSubsys = "subsys"

	Module    = "module"
	Path      = "path"
	Symbol    = "symbol"
	Interface = "interface"
	Hook      = "hook"
	Requester = "requester"
	Address   = "address"
	Original  = "original"
	Slot      = "slot"
	Class     = "class"
	Property  = "property"
	Offset    = "offset"
	Stage     = "stage"
	Channel   = "channel"
	Severity  = "severity"
	Pid       = "pid"
	Program   = "program"
)
