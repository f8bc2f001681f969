package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/mevdschee/underground-chat-server/internal/sshserver"
)

// fileConfig mirrors the optional YAML config file. Flags override any
// value set here.
type fileConfig struct {
	Port      int    `yaml:"port"`
	Bind      string `yaml:"bind"`
	Motd      string `yaml:"motd"`
	Whitelist string `yaml:"whitelist"`
	Operators string `yaml:"operators"`
	HostKey   string `yaml:"host_key"`
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 2222, "SSH server port")
	bind := flag.String("bind", "0.0.0.0", "Address to bind to")
	motd := flag.String("motd", "./motd.txt", "Path to the MOTD file")
	whitelist := flag.String("whitelist", "", "Path to the public key whitelist (empty = open room)")
	operators := flag.String("ops", "", "Path to the operator key file (empty = no operators)")
	hostKey := flag.String("hostkey", "", "Path to SSH host key (auto-generated if not specified)")
	flag.Parse()

	cfg := fileConfig{
		Port:      *port,
		Bind:      *bind,
		Motd:      *motd,
		Whitelist: *whitelist,
		Operators: *operators,
		HostKey:   *hostKey,
	}

	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to read config file: %v", err)
		}
		var fromFile fileConfig
		if err := yaml.Unmarshal(raw, &fromFile); err != nil {
			log.Fatalf("Failed to parse config file: %v", err)
		}
		mergeConfig(&cfg, fromFile)

		// Explicit flags still win over file values.
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "port":
				cfg.Port = *port
			case "bind":
				cfg.Bind = *bind
			case "motd":
				cfg.Motd = *motd
			case "whitelist":
				cfg.Whitelist = *whitelist
			case "ops":
				cfg.Operators = *operators
			case "hostkey":
				cfg.HostKey = *hostKey
			}
		})
	}

	if cfg.HostKey == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		cfg.HostKey = filepath.Join(homeDir, ".ucs", "host_key")
		if err := os.MkdirAll(filepath.Dir(cfg.HostKey), 0700); err != nil {
			log.Fatalf("Failed to create .ucs directory: %v", err)
		}
	}

	server, err := sshserver.NewServer(sshserver.Config{
		Address:       fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		HostKeyPath:   cfg.HostKey,
		MotdPath:      cfg.Motd,
		WhitelistPath: cfg.Whitelist,
		OperatorPath:  cfg.Operators,
	})
	if err != nil {
		log.Fatalf("Failed to create SSH server: %v", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start SSH server: %v", err)
	}
	log.Printf("Connect with: ssh -p %d %s", server.Port(), cfg.Bind)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Printf("Shutting down...")
	server.Stop()
}

// mergeConfig copies file values over the flag defaults.
func mergeConfig(dst *fileConfig, src fileConfig) {
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.Bind != "" {
		dst.Bind = src.Bind
	}
	if src.Motd != "" {
		dst.Motd = src.Motd
	}
	if src.Whitelist != "" {
		dst.Whitelist = src.Whitelist
	}
	if src.Operators != "" {
		dst.Operators = src.Operators
	}
	if src.HostKey != "" {
		dst.HostKey = src.HostKey
	}
}
