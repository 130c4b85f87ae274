package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/maxwellpower/mm-channel-export/internal/config"
	"github.com/maxwellpower/mm-channel-export/internal/export"
	"github.com/maxwellpower/mm-channel-export/internal/mattermost"
)

const version = "2.0.0"

const logFileName = "mattermost_export.log"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		return
	}

	log.Printf("Mattermost Channel Export v%s", version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	setupLogFile(cfg.OutputDir)

	client := mattermost.NewClient(cfg.BaseURL, cfg.APIToken, mattermost.Options{
		InsecureSkipVerify: !cfg.VerifySSL,
		PerPage:            cfg.PerPage,
		RequestsPerSecond:  cfg.RequestsPerSecond,
		Debug:              cfg.Debug,
	})

	if err := export.Run(cfg, client); err != nil {
		var apiErr *mattermost.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			log.Fatalf("Export failed: %v (check that API_TOKEN is valid and has access to the channel)", err)
		}
		log.Fatalf("Export failed: %v", err)
	}
}

// setupLogFile mirrors log output into a file next to the reports.
// Logging continues on stderr alone when the file cannot be opened.
func setupLogFile(dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Warning: could not create output directory %s: %v", dir, err)
		return
	}
	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: could not open log file %s: %v", path, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}
