package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"taskdeck-cli/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var auth string
	var readOnly bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run the JSON API server (board, tasks, comments, live change feed)",
		Long: strings.TrimSpace(`
Run a local HTTP server over the current workspace.

Endpoints are plain JSON; /ws is a websocket change feed. Auth modes:
- none: every request acts as the fixed --profile (local single-user)
- dev:  POST /login with a profileId or email issues a signed session cookie
`),
		Example: strings.TrimSpace(`
# Serve the current workspace for yourself
taskdeck web --addr 127.0.0.1:4321

# Multi-profile dev mode
taskdeck web --addr :4321 --auth dev
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			profileID := ""
			if strings.ToLower(strings.TrimSpace(auth)) != "dev" {
				profileID, err = currentProfileID(app, db)
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:      listenAddr,
				Dir:       app.Dir,
				Workspace: strings.TrimSpace(app.Workspace),
				ProfileID: profileID,
				ReadOnly:  readOnly,
				AuthMode:  auth,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"workspace": strings.TrimSpace(app.Workspace),
					"dir":       app.Dir,
					"auth":      strings.ToLower(strings.TrimSpace(auth)),
					"readOnly":  readOnly,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{
					"curl " + url + "health",
					"curl " + url + "projects",
				},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Taskdeck web running at %s (workspace=%s)\n", url, strings.TrimSpace(app.Workspace))

			return http.Serve(ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4321", "Bind address (host:port or :port)")
	cmd.Flags().StringVar(&auth, "auth", "none", "Auth mode (none|dev)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Reject all mutations")
	return cmd
}
