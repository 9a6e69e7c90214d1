package gate

import "strings"

// dangerousCmdlets is the deny-set of command names that mutate
// filesystem, registry, process, service, or session state, or that
// invoke arbitrary code. Matching a name here rejects the command before
// the allow-list is even consulted. Lookup is case-insensitive (keys are
// lower-case).
var dangerousCmdlets = map[string]struct{}{
	// File writers and content mutators
	"set-content":   {},
	"add-content":   {},
	"clear-content": {},
	"out-file":      {},
	"new-item":      {},
	"set-item":      {},
	"clear-item":    {},
	"export-csv":    {},
	"export-clixml": {},
	"tee-object":    {},

	// Deleters, renamers, movers, copiers
	"remove-item": {},
	"move-item":   {},
	"rename-item": {},
	"copy-item":   {},

	// Registry / item property mutators
	"new-itemproperty":    {},
	"set-itemproperty":    {},
	"remove-itemproperty": {},
	"rename-itemproperty": {},

	// Session state
	"set-location": {},
	"set-variable": {},
	"new-variable": {},
	"set-alias":    {},
	"new-alias":    {},

	// Process and service controllers
	"start-process":   {},
	"stop-process":    {},
	"wait-process":    {},
	"start-service":   {},
	"stop-service":    {},
	"restart-service": {},
	"suspend-service": {},
	"resume-service":  {},
	"set-service":     {},
	"new-service":     {},
	"start-job":       {},

	// Arbitrary-code invokers
	"invoke-expression": {},
	"invoke-command":    {},
	"invoke-item":       {},
	"invoke-webrequest": {},
	"invoke-restmethod": {},
	"new-object":        {},

	// Known short aliases of the above
	"sc": {}, "ac": {}, "clc": {},
	"ni": {}, "si": {}, "cli": {},
	"ri": {}, "rm": {}, "rmdir": {}, "del": {}, "erase": {}, "rd": {},
	"mi": {}, "mv": {}, "move": {},
	"rni": {}, "ren": {}, "rnp": {},
	"ci": {}, "cp": {}, "copy": {}, "cpi": {},
	"sl": {}, "cd": {}, "chdir": {},
	"sv": {}, "nv": {}, "sal": {}, "nal": {},
	"saps": {}, "start": {}, "spps": {}, "kill": {},
	"sasv": {}, "spsv": {},
	"iex": {}, "icm": {}, "ii": {}, "iwr": {}, "irm": {}, "curl": {}, "wget": {},
	"tee": {},
}

// isDangerousCommand reports whether the first token of a command names an
// inherently dangerous operation. The name may arrive as an absolute path
// or with an .exe suffix; only the base name is considered.
func isDangerousCommand(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx := strings.LastIndexAny(name, `\/`); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, ".exe")
	_, found := dangerousCmdlets[name]
	return found
}
