package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tutor-ai/internal/api"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tutor-ai",
	Short: "AI tutoring, quizzes and study-material summaries",
	Long: `tutor-ai serves a small tutoring web app backed by an OpenAI-compatible LLM:
personalized explanations, multiple choice quizzes, knowledge-source search and
map-reduce summaries of PDFs and YouTube videos.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.AddCommand(serveCmd, pdfCmd, youtubeCmd, searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	server := api.NewServer(api.Deps{
		Tutor:     a.tutor,
		Search:    a.search,
		Documents: a.documents,
		Summaries: a.summaries,
		History:   a.history,
		Log:       a.log,
	})
	mux := http.NewServeMux()

	staticFS := http.FileServer(http.Dir(filepath.Join(a.cfg.FrontendDir, "static")))
	mux.Handle("/static/", http.StripPrefix("/static/", staticFS))
	mux.HandleFunc("/", serveFile(filepath.Join(a.cfg.FrontendDir, "index.html")))

	handler := server.Handler()
	mux.Handle("/tutor", handler)
	mux.Handle("/quiz", handler)
	mux.Handle("/api/", handler)

	srv := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", "addr", srv.Addr, "model", a.cfg.LLMModel, "frontend", a.cfg.FrontendDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func serveFile(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		http.ServeFile(w, r, path)
	}
}
