package main

import (
	"io"
	"os"
	"text/template"
)

const serviceTemplate = `[Unit]
Description=Crab cups simulator
After=network.target

[Service]
Type=simple
User={{.User}}
ExecStart={{.BinaryPath}} -serve{{if .ConfigPath}} -config {{.ConfigPath}}{{end}}
Environment=NO_COLOR=1
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

type ServiceParams struct {
	BinaryPath string
	User       string
	ConfigPath string
}

// WriteServiceFile renders a systemd unit that runs the HTTP server.
func WriteServiceFile(w io.Writer, params ServiceParams) error {
	tmpl, err := template.New("cups.service").Parse(serviceTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, params)
}

func SystemdServiceFile(configPath string) error {
	path, err := os.Executable()
	if err != nil {
		return err
	}

	user := os.Getenv("USER")
	if user == "" {
		user = "cups"
	}

	return WriteServiceFile(os.Stdout, ServiceParams{
		BinaryPath: path,
		User:       user,
		ConfigPath: configPath,
	})
}
