// Command sample demonstrates the github.com/bjaus/seam dispatch core with a
// small api covering guards, bodies, state and the info export.
//
// Run:
//
//	go run ./cmd/sample
//
// Print the route description:
//
//	go run ./cmd/sample -info                  # JSON to stdout
//	go run ./cmd/sample -info -yaml -o api.yml # YAML to a file
//
// Then explore:
//
//	GET  http://localhost:8080/_info
//	POST http://localhost:8080/v1/maths.divide   {"a":20,"b":10}
//	POST http://localhost:8080/v1/notes.create   {"title":"hi","body":"there"}
//	GET  http://localhost:8080/v1/notes.list
//	POST http://localhost:8080/v1/auth.login     {"user":"alice"}
//	GET  http://localhost:8080/v1/auth.whoami    (Authorization: Bearer …)
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/bjaus/seam"
	"github.com/bjaus/seam/jwtauth"
)

func main() {
	infoFlag := flag.Bool("info", false, "Print the route description and exit")
	yamlFlag := flag.Bool("yaml", false, "Write the description as YAML (requires -info)")
	outFlag := flag.String("o", "", "Output file for the description (requires -info)")
	addrFlag := flag.String("addr", ":8080", "Listen address")
	dbFlag := flag.String("db", ":memory:", "SQLite database for notes")
	secretFlag := flag.String("secret", "sample-secret", "HMAC secret for bearer tokens")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	notes, err := openNotes(*dbFlag)
	if err != nil {
		slog.Error("open notes", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := notes.Close(); err != nil {
			slog.Error("close notes", "err", err)
		}
	}()

	a := newAPI(notes, jwtauth.NewVerifier([]byte(*secretFlag)))

	if *infoFlag {
		if err := writeInfo(a, *outFlag, *yamlFlag); err != nil {
			slog.Error("info generation failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting server", "addr", *addrFlag, "info", "http://localhost"+*addrFlag+"/_info")

	if err := a.ListenAndServe(ctx, *addrFlag); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
	}

	slog.Info("server stopped")
}

func newAPI(notes *noteStore, verifier *jwtauth.Verifier) *seam.Api {
	a := seam.New(
		seam.WithBasePath("/v1"),
		seam.WithDefaultBodyLimit(1<<20), // 1 MB
		seam.Provide(notes),
		seam.Provide(verifier),
		seam.Provide(seam.NewRateLimiter(seam.RateLimitConfig{Rate: 5, Burst: 10})),
	)

	a.Use(seam.Recovery())
	a.Use(seam.Logger(slog.Default()))
	a.ServeInfo("/_info")

	maths := a.Group("maths.")
	maths.Add("divide").
		Description("Divide two numbers by each other").
		Handler(seam.Func1(divide))
	maths.Add("multiply").
		Description("Multiply two numbers").
		Handler(seam.Func1(multiply))

	a.Add("meta.status").
		Description("Server status and the id of this request").
		Handler(seam.Func2(status))
	a.Add("meta.ping").
		Description("Rate limited liveness check").
		Handler(seam.Func2(ping))
	a.Add("meta.echo").
		Description("Echo the raw request body").
		BodyLimit(64 << 10).
		Handler(seam.Func1(echo))

	n := a.Group("notes.")
	n.Add("create").
		Description("Store a new note").
		Handler(seam.Func2(createNote))
	n.Add("list").
		Description("List all notes, newest first").
		Handler(seam.Func1(listNotes))
	n.Add("get").
		Description("Fetch a note by id").
		Handler(seam.Func2(getNote))

	auth := a.Group("auth.")
	auth.Add("login").
		Description("Issue a bearer token for a user").
		Handler(seam.Func2(login))
	auth.Add("whoami").
		Description("Describe the caller of a bearer token").
		Handler(seam.Func1(whoami))

	return a
}

func writeInfo(a *seam.Api, outFile string, asYAML bool) error {
	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("failed to close output file", "err", err)
			}
		}()
		w = f
	}
	if asYAML {
		return a.WriteInfoYAML(w)
	}
	return a.WriteInfo(w)
}
