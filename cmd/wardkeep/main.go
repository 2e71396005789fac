package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/cli"
)

// Version is provided at compile time
var Version = "dev"

func main() {
	app := kingpin.New("wardkeep", "Audited access control for notes and tasks")
	app.Version(Version)

	w := cli.ConfigureGlobals(app)

	// Session commands
	cli.ConfigureRegisterCommand(app, w)
	cli.ConfigureLoginCommand(app, w)
	cli.ConfigureLogoutCommand(app, w)
	cli.ConfigureWhoamiCommand(app, w)

	// Permission commands
	cli.ConfigureGrantCommand(app, w)
	cli.ConfigureRevokeCommand(app, w)
	cli.ConfigurePermissionsCommand(app, w)

	// Resource commands
	cli.ConfigureNoteCommand(app, w)
	cli.ConfigureTaskCommand(app, w)

	// Audit commands
	cli.ConfigureAuditCommand(app, w)

	// Infrastructure commands
	cli.ConfigureSetupCommand(app, w)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
