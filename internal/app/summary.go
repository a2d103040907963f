package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"rsadesk/internal/config"
	"rsadesk/internal/trade"
)

type StartupSummary struct {
	Env      string
	HTTPAddr string
	Auth     []string
	Bot      BotSummary
	Output   OutputSummary
	Brokers  BrokerSummary
}

type BotSummary struct {
	Python       string
	Script       string
	Requirements string
	Sentinel     string
	Timeout      time.Duration
}

type OutputSummary struct {
	Path   string
	Driver string
}

type BrokerSummary struct {
	Source    string
	Selectors []string
	Brokers   []string
}

func newStartupSummary(cfg *config.Config, catalog config.CatalogSnapshot) *StartupSummary {
	s := &StartupSummary{
		Env:      cfg.App.Env,
		HTTPAddr: cfg.App.HTTPAddr,
		Bot: BotSummary{
			Python:       cfg.Bot.Python,
			Script:       cfg.Bot.ScriptPath,
			Requirements: cfg.Bot.RequirementsPath,
			Sentinel:     cfg.Bot.Sentinel,
			Timeout:      time.Duration(cfg.Bot.TimeoutSeconds) * time.Second,
		},
		Output:  OutputSummary{Path: cfg.Output.Path, Driver: cfg.Output.ResolvedDriver()},
		Brokers: BrokerSummary{Source: cfg.Bot.BrokersPath},
	}
	for user := range cfg.Auth.Accounts {
		s.Auth = append(s.Auth, user)
	}
	sort.Strings(s.Auth)
	for _, name := range catalog.Brokers {
		if trade.IsGroupSelector(name) {
			s.Brokers.Selectors = append(s.Brokers.Selectors, name)
			continue
		}
		s.Brokers.Brokers = append(s.Brokers.Brokers, name)
	}
	return s
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%*s\n", 40+len("STARTUP SUMMARY")/2, "STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[PANEL]")
	fmt.Printf("  env:    %s\n", s.Env)
	fmt.Printf("  listen: %s\n", s.HTTPAddr)
	if len(s.Auth) == 0 {
		fmt.Println("  auth:   (open)")
	} else {
		fmt.Printf("  auth:   %s\n", formatList(s.Auth))
	}
	fmt.Println()

	fmt.Println("[BOT]")
	fmt.Printf("  python:       %s\n", orUnset(s.Bot.Python))
	fmt.Printf("  script:       %s\n", orUnset(s.Bot.Script))
	fmt.Printf("  requirements: %s\n", orUnset(s.Bot.Requirements))
	fmt.Printf("  sentinel:     %q\n", s.Bot.Sentinel)
	if s.Bot.Timeout > 0 {
		fmt.Printf("  timeout:      %s\n", s.Bot.Timeout)
	} else {
		fmt.Println("  timeout:      none")
	}
	fmt.Println()

	fmt.Println("[OUTPUT]")
	fmt.Printf("  %s (%s)\n", orUnset(s.Output.Path), s.Output.Driver)
	fmt.Println()

	fmt.Println("[BROKERS]")
	source := s.Brokers.Source
	if source == "" {
		source = "built-in"
	}
	fmt.Printf("  source:    %s\n", source)
	fmt.Printf("  selectors: %s\n", formatList(s.Brokers.Selectors))
	fmt.Printf("  brokers:   %s\n", formatList(s.Brokers.Brokers))
	fmt.Println(strings.Repeat("=", 80))
}

func orUnset(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(not configured)"
	}
	return v
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
