package jwtauth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/seam"
	"github.com/bjaus/seam/jwtauth"
)

var secret = []byte("test-secret")

func TestVerifier(t *testing.T) {
	t.Parallel()

	v := jwtauth.NewVerifier(secret)

	valid, err := v.Sign(jwt.MapClaims{"sub": "ada", "exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	expired, err := v.Sign(jwt.MapClaims{"sub": "ada", "exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, err)

	foreign, err := jwtauth.NewVerifier([]byte("other-secret")).Sign(jwt.MapClaims{"sub": "ada"})
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "ada"}).SignedString(secret)
	require.NoError(t, err)

	tests := map[string]struct {
		token   string
		wantErr bool
	}{
		"valid":        {token: valid},
		"expired":      {token: expired, wantErr: true},
		"wrong secret": {token: foreign, wantErr: true},
		"other method": {token: hs512, wantErr: true},
		"garbage":      {token: "not.a.token", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			claims, err := v.Verify(tc.token)
			if tc.wantErr {
				require.ErrorIs(t, err, jwtauth.ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			sub, err := claims.GetSubject()
			require.NoError(t, err)
			assert.Equal(t, "ada", sub)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		header  string
		want    string
		wantErr bool
	}{
		"bearer":       {header: "Bearer abc", want: "abc"},
		"lower scheme": {header: "bearer abc", want: "abc"},
		"padded":       {header: "Bearer   abc ", want: "abc"},
		"missing":      {wantErr: true},
		"basic":        {header: "Basic dXNlcjpwYXNz", wantErr: true},
		"no token":     {header: "Bearer ", wantErr: true},
		"scheme only":  {header: "Bearer", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := make(http.Header)
			if tc.header != "" {
				h.Set("Authorization", tc.header)
			}
			got, err := jwtauth.BearerToken(h)
			if tc.wantErr {
				require.ErrorIs(t, err, jwtauth.ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func whoami(_ context.Context, c jwtauth.Claims) (string, error) {
	return c.GetSubject()
}

func TestClaims(t *testing.T) {
	t.Parallel()

	v := jwtauth.NewVerifier(secret)
	a := seam.New(seam.Provide(v))
	a.Add("auth.whoami").Handler(seam.Func1(whoami))

	token, err := v.Sign(jwt.MapClaims{"sub": "grace"})
	require.NoError(t, err)

	tests := map[string]struct {
		auth        string
		wantCode    int
		wantMessage string
	}{
		"valid":   {auth: "Bearer " + token, wantCode: http.StatusOK},
		"missing": {wantCode: http.StatusUnauthorized, wantMessage: "Missing bearer token"},
		"invalid": {auth: "Bearer " + token + "x", wantCode: http.StatusUnauthorized, wantMessage: "Invalid bearer token"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := seam.NewRequest(http.MethodGet, "auth.whoami", nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}

			resp, err := a.Handle(context.Background(), req)
			if tc.wantCode == http.StatusOK {
				require.NoError(t, err)
				assert.JSONEq(t, `"grace"`, string(resp.Body))
				return
			}
			require.ErrorIs(t, err, seam.ErrParamResolution)
			apiErr := seam.Translate(err)
			assert.Equal(t, tc.wantCode, apiErr.Code)
			assert.Equal(t, tc.wantMessage, apiErr.ExternalMessage)
		})
	}
}

func TestClaims_withoutVerifier(t *testing.T) {
	t.Parallel()

	a := seam.New()
	a.Add("auth.whoami").Handler(seam.Func1(whoami))

	req := seam.NewRequest(http.MethodGet, "auth.whoami", nil)
	req.Header.Set("Authorization", "Bearer abc")

	_, err := a.Handle(context.Background(), req)
	assert.Equal(t, http.StatusInternalServerError, seam.Translate(err).Code)
}
