package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drawpile/dpwebadmin/internal/api"
	"github.com/drawpile/dpwebadmin/internal/app"
	"github.com/drawpile/dpwebadmin/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file")
	serverURL := flag.String("url", "", "Base URL of the server's admin API")
	username := flag.String("username", "", "Admin username")
	password := flag.String("password", "", "Admin password")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *username != "" {
		cfg.Server.Username = *username
	}
	if *password != "" {
		cfg.Server.Password = *password
	}
	if cfg.Server.URL == "" {
		fmt.Fprintln(os.Stderr, "Error: no server URL configured (use -url or the config file)")
		os.Exit(1)
	}
	base := strings.TrimSuffix(cfg.Server.URL, "/")

	client := api.NewClient(base, cfg.Server.Username, cfg.Server.Password)
	m := app.New(client, base, cfg.Refresh)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
