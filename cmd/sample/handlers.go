package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bjaus/seam"
	"github.com/bjaus/seam/jwtauth"
)

var started = time.Now()

// ---------------------------------------------------------------------------
// Maths
// ---------------------------------------------------------------------------

// DivisionInput is the input of maths.divide.
type DivisionInput struct {
	A float64 `json:"a" doc:"The dividend"`
	B float64 `json:"b" doc:"The divisor"`
}

// DivisionOutput echoes the operands with the quotient.
type DivisionOutput struct {
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Result float64 `json:"result"`
}

// Doc implements seam.Documenter.
func (DivisionOutput) Doc() string { return "The result of a division" }

func divide(_ context.Context, in seam.JSON[DivisionInput]) (*DivisionOutput, error) {
	if in.Value.B == 0 {
		return nil, seam.External(http.StatusBadRequest, "Division by zero")
	}
	return &DivisionOutput{A: in.Value.A, B: in.Value.B, Result: in.Value.A / in.Value.B}, nil
}

// Factors is the input of maths.multiply.
type Factors struct {
	Values []float64 `json:"values" doc:"Numbers to multiply"`
}

// Validate implements seam.SelfValidator.
func (f Factors) Validate() error {
	if len(f.Values) == 0 {
		return errors.New("at least one value is required")
	}
	return nil
}

func multiply(_ context.Context, in seam.JSON[Factors]) (seam.JSON[float64], error) {
	product := 1.0
	for _, v := range in.Value.Values {
		product *= v
	}
	return seam.JSON[float64]{Value: product}, nil
}

// ---------------------------------------------------------------------------
// Meta
// ---------------------------------------------------------------------------

// Status reports server uptime.
type Status struct {
	RequestID string        `json:"request_id"`
	Uptime    time.Duration `json:"uptime"`
	Time      time.Time     `json:"time"`
	Version   string        `json:"version,omitempty"`
}

func status(_ context.Context, id seam.RequestID, meta seam.Meta) (Status, error) {
	return Status{
		RequestID: string(id),
		Uptime:    time.Since(started),
		Time:      time.Now(),
		Version:   meta.Header.Get("X-Client-Version"),
	}, nil
}

// Pong answers meta.ping.
type Pong struct {
	Client string `json:"client"`
}

func ping(_ context.Context, t seam.Throttle, _ seam.Meta) (Pong, error) {
	return Pong{Client: t.Key}, nil
}

func echo(_ context.Context, in seam.Binary) (seam.Binary, error) {
	return in, nil
}

// ---------------------------------------------------------------------------
// Notes
// ---------------------------------------------------------------------------

// NewNote is the input of notes.create.
type NewNote struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// Validate implements seam.SelfValidator.
func (n NewNote) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// NoteID selects a note.
type NoteID struct {
	ID int64 `json:"id"`
}

func createNote(ctx context.Context, store seam.State[*noteStore], in seam.JSON[NewNote]) (Note, error) {
	return store.Value.create(ctx, in.Value.Title, in.Value.Body)
}

func listNotes(ctx context.Context, store seam.State[*noteStore]) ([]Note, error) {
	return store.Value.list(ctx)
}

func getNote(ctx context.Context, store seam.State[*noteStore], in seam.JSON[NoteID]) (*Note, error) {
	return store.Value.get(ctx, in.Value.ID)
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// Login is the input of auth.login.
type Login struct {
	User string `json:"user"`
}

// Token is a signed bearer token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Who describes the caller.
type Who struct {
	User    string    `json:"user"`
	Expires time.Time `json:"expires,omitzero"`
}

func login(_ context.Context, v seam.State[*jwtauth.Verifier], in seam.JSON[Login]) (Token, error) {
	if in.Value.User == "" {
		return Token{}, seam.NotAuthorized("user is required")
	}
	exp := time.Now().Add(time.Hour)
	tok, err := v.Value.Sign(jwt.MapClaims{"sub": in.Value.User, "exp": exp.Unix()})
	if err != nil {
		return Token{}, err
	}
	return Token{Token: tok, ExpiresAt: exp}, nil
}

func whoami(_ context.Context, claims jwtauth.Claims) (Who, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return Who{}, err
	}
	who := Who{User: sub}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		who.Expires = exp.Time
	}
	return who, nil
}
