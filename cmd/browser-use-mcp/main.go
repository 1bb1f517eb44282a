// Package main runs the browser-use-mcp server: an MCP stdio server that
// discovers downloadable documents on websites, either by deterministic
// link extraction or by LLM-driven navigation. Stdout carries the MCP
// protocol, so all diagnostics go to the log file or stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sushgandhi/browser-use-mcp/pkg/browser"
	"github.com/sushgandhi/browser-use-mcp/pkg/config"
	"github.com/sushgandhi/browser-use-mcp/pkg/finder"
	"github.com/sushgandhi/browser-use-mcp/pkg/llm/openai"
	"github.com/sushgandhi/browser-use-mcp/pkg/logging"
	"github.com/sushgandhi/browser-use-mcp/pkg/mcp"
)

const (
	serverName = "browser-use-mcp"
	version    = "0.1.0"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	ConfigFile  string
	ShowVersion bool
}

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("%s v%s\n", serverName, version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, cliConfig); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "%s: %v\n", serverName, err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cliConfig := &CLIConfig{}

	flag.StringVar(&cliConfig.APIKey, "api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key")
	flag.StringVar(&cliConfig.BaseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI API base URL")
	flag.StringVar(&cliConfig.Model, "model", "", "LLM model for intelligent search (overrides config file)")
	flag.StringVar(&cliConfig.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.BoolVar(&cliConfig.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "browser-use-mcp - MCP server for document link discovery\n\n")
		fmt.Fprintf(os.Stderr, "Usage: browser-use-mcp [options]\n\n")
		fmt.Fprintf(os.Stderr, "The server speaks MCP over stdio; run it from an MCP client.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return cliConfig
}

func run(ctx context.Context, cliConfig *CLIConfig) error {
	log, _ := logging.NewLogger("main")
	defer log.Close()

	configPath := cliConfig.ConfigFile
	if configPath == "" {
		var err error
		if configPath, err = config.DefaultPath(); err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cliConfig.Model != "" {
		cfg.Agent.Model = cliConfig.Model
	}
	if cliConfig.BaseURL != "" {
		cfg.Agent.BaseURL = cliConfig.BaseURL
	}

	log.Infof("starting %s v%s (run %s)", serverName, version, logging.RunID())

	sessions := browser.NewManager(browser.Options{
		Headless:            cfg.Browser.Headless,
		NavigationTimeoutMS: cfg.Browser.NavigationTimeoutMS,
	})
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			log.Warnf("failed to close browser session: %v", closeErr)
		}
	}()

	server := mcp.NewServer(serverName, version, os.Stdin, os.Stdout)
	server.Register(mcp.NewGetDocumentLinksTool(sessions))
	server.Register(mcp.NewSiteLinksTool(sessions))
	server.Register(mcp.NewCloseBrowserTool(sessions))

	// The intelligent tools need an LLM backend. Without an API key the
	// server still runs with the deterministic extraction tools only.
	provider, err := openai.NewProvider(cliConfig.APIKey,
		openai.WithModel(cfg.Agent.Model),
		openai.WithBaseURL(cfg.Agent.BaseURL),
	)
	if err != nil {
		log.Warnf("intelligent search disabled: %v", err)
	} else {
		docFinder := finder.New(sessions, provider, finder.Options{
			MaxSteps: cfg.Agent.MaxSteps,
			Timeout:  cfg.StepTimeout(),
		})
		server.Register(mcp.NewFindDocumentsTool(docFinder))
		server.Register(mcp.NewFindPDFsTool(docFinder))
		server.Register(mcp.NewFindNewsPDFTool(docFinder))
		server.Register(mcp.NewFindAnnualReportsTool(docFinder))
	}

	err = server.Serve(ctx)
	if err != nil && ctx.Err() != nil {
		log.Infof("shut down on signal")
		return nil
	}
	return err
}
