package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the agvis engine.

Endpoints:
  GET  /health        — Health check
  POST /api/diff      — Diff two images and report changed regions
  POST /api/annotate  — Render an annotation spec over an image
  POST /api/select    — Run window selection over a candidate list
  GET  /api/ws        — WebSocket for interactive observation sessions`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 6143, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")

	listen := fmt.Sprintf("%s:%d", addr, port)
	srv := api.New(listen)
	return srv.ListenAndServe()
}
