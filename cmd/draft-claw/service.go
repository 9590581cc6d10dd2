package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kardianos/service"
)

// serveProgram runs "serve" under the system service manager.
type serveProgram struct {
	common commonFlags
	cancel context.CancelFunc
	done   chan struct{}
}

// Start implements service.Interface
func (p *serveProgram) Start(s service.Service) error {
	cfg, err := p.common.loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		if err := serve(ctx, cfg, "", true); err != nil {
			fmt.Fprintf(os.Stderr, "draft-claw service stopped: %v\n", err)
		}
	}()
	return nil
}

// Stop implements service.Interface
func (p *serveProgram) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return nil
}

func getServiceConfig(configPath string) *service.Config {
	arguments := []string{"service", "run"}
	if configPath != "" {
		arguments = append(arguments, "-config", configPath)
	}
	return &service.Config{
		Name:        "DraftClaw",
		DisplayName: "Draft Claw",
		Description: "Watches Eternal draft observations and serves picks and votes",
		Arguments:   arguments,
	}
}

func runServiceCommand(args []string) error {
	if len(args) < 1 {
		printServiceUsage()
		os.Exit(1)
	}
	action := args[0]

	fs := flag.NewFlagSet("service "+action, flag.ExitOnError)
	prg := &serveProgram{}
	prg.common.register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	svcConfig := getServiceConfig(prg.common.configPath)
	s, err := service.New(prg, svcConfig)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	switch action {
	case "run":
		return s.Run()
	case "install":
		if err := s.Install(); err != nil {
			return fmt.Errorf("failed to install service: %w", err)
		}
		fmt.Println("Service installed. Start it with: draft-claw service start")
	case "uninstall":
		if err := s.Uninstall(); err != nil {
			return fmt.Errorf("failed to uninstall service: %w", err)
		}
		fmt.Println("Service uninstalled")
	case "start":
		if err := s.Start(); err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}
		fmt.Println("Service started")
	case "stop":
		if err := s.Stop(); err != nil {
			return fmt.Errorf("failed to stop service: %w", err)
		}
		fmt.Println("Service stopped")
	case "restart":
		if err := s.Restart(); err != nil {
			return fmt.Errorf("failed to restart service: %w", err)
		}
		fmt.Println("Service restarted")
	case "status":
		status, err := s.Status()
		if err != nil && !errors.Is(err, service.ErrNotInstalled) {
			return fmt.Errorf("failed to get service status: %w", err)
		}
		switch {
		case errors.Is(err, service.ErrNotInstalled):
			fmt.Println("Status: not installed")
		case status == service.StatusRunning:
			fmt.Println("Status: running")
		case status == service.StatusStopped:
			fmt.Println("Status: stopped")
		default:
			fmt.Println("Status: unknown")
		}
		fmt.Printf("Name: %s\n", svcConfig.Name)
	default:
		printServiceUsage()
		return fmt.Errorf("unknown service command: %s", action)
	}
	return nil
}

func printServiceUsage() {
	fmt.Println("Usage: draft-claw service <command> [-config path]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  install    Install draft-claw serve as a system service")
	fmt.Println("  uninstall  Remove the service")
	fmt.Println("  start      Start the service")
	fmt.Println("  stop       Stop the service")
	fmt.Println("  restart    Restart the service")
	fmt.Println("  status     Show the service status")
	fmt.Println("  run        Run in the foreground under the service manager")
}
