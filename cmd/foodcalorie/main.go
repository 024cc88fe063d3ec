package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/foodcalorie/internal/classify"
	"github.com/jask/foodcalorie/internal/config"
	"github.com/jask/foodcalorie/internal/picker"
	"github.com/jask/foodcalorie/internal/reconcile"
	"github.com/jask/foodcalorie/internal/secrets"
	"github.com/jask/foodcalorie/internal/tui"
	"github.com/jask/foodcalorie/internal/upload"
)

func main() {
	once := flag.Bool("once", false, "classify the photo given as argument, print the result and exit")
	storeKey := flag.Bool("store-key", false, "read an API key for the configured backend from stdin and store it")
	writeConfig := flag.Bool("write-config", false, "write the effective configuration to the config file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	closeLog, err := setupLogging(cfg.Log.Path)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closeLog()

	switch {
	case *storeKey:
		if err := storeAPIKey(cfg, os.Stdin); err != nil {
			fmt.Fprintln(os.Stderr, "store key:", err)
			os.Exit(1)
		}
		fmt.Println("key stored")
		return
	case *writeConfig:
		if err := config.Save(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("wrote", config.Path())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader := &upload.Uploader{Classifier: newClassifier(cfg), Timeout: cfg.Classifier.Timeout}

	var initial *picker.File
	if arg := flag.Arg(0); arg != "" {
		if err := picker.CheckReadable(arg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		f, ok := picker.Resolve(arg)
		if !ok {
			fmt.Fprintf(os.Stderr, "cannot resolve %s\n", arg)
			os.Exit(1)
		}
		initial = &f
	}

	if *once {
		if initial == nil {
			fmt.Fprintln(os.Stderr, "usage: foodcalorie -once <photo>")
			os.Exit(2)
		}
		last := tui.Stream(reconcile.New(), uploader.Upload(ctx, *initial), tui.NewConsole(os.Stdout))
		if last.HasNotice {
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(tui.New(ctx, cfg, uploader, initial), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func newClassifier(cfg config.Config) classify.Classifier {
	switch strings.ToLower(strings.TrimSpace(cfg.Classifier.Backend)) {
	case config.BackendGemini:
		key := secrets.Resolve(config.BackendGemini, cfg.Gemini.APIKeyEnv, cfg.Gemini.APIKey)
		return classify.NewGeminiClassifier(key, cfg.Gemini.Model)
	default:
		key := secrets.Resolve(config.BackendHTTP, cfg.Classifier.APIKeyEnv, cfg.Classifier.APIKey)
		return classify.NewHTTPClassifier(cfg.Classifier.Endpoint, cfg.Classifier.FieldName, key, cfg.Classifier.Timeout)
	}
}

func storeAPIKey(cfg config.Config, in io.Reader) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return fmt.Errorf("empty key")
	}
	return secrets.Store(cfg.Classifier.Backend, key)
}

// setupLogging sends the standard logger to path, or discards it when path is empty
// because the TUI owns the terminal.
func setupLogging(path string) (func(), error) {
	if strings.TrimSpace(path) == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "foodcalorie")
	if err != nil {
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}
