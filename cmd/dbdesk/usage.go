package main

// Usage templates share their flag and command sections. Examples are only
// printed for commands that define them.

const flagSections = `{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}
Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}`

const commandSection = `{{if .HasAvailableSubCommands}}
Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}  {{rpad .Name .NamePadding }} {{.Short}}
{{end}}{{end}}{{end}}`

const exampleSection = `{{if .HasExample}}
Examples:
{{.Example}}
{{end}}`

const helpHint = `{{if .HasAvailableSubCommands}}
Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

const environmentSection = `
Environment:
  DBDESK_PASSWORD   database password used when the keychain has none
`

const subcommandUsageTemplate = `Usage:
  {{.UseLine}}
` + exampleSection + flagSections

const groupUsageTemplate = `Usage:
  {{.UseLine}}
  {{.CommandPath}} [command]
` + commandSection + flagSections + helpHint

const rootUsageTemplate = `Usage:
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}
` + commandSection + flagSections + environmentSection + helpHint
