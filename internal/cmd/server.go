package cmd

import (
	"fmt"

	"github.com/Kanompung1988/ASR-NANO/internal/server"
)

// ServerCmd serves the history browser over SSH
type ServerCmd struct {
	Host string `help:"Host to bind to" default:"localhost"`
	Port string `help:"Port to listen on" default:"2222" short:"p"`
}

func (s *ServerCmd) Run(cli *CLI) error {
	srv, err := server.NewServer(s.Host, s.Port, cli.DBPath)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}
	return srv.Start()
}
